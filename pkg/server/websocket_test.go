package server

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/saint0x/repoexplain/pkg/ai"
	"github.com/saint0x/repoexplain/pkg/github"
	"github.com/saint0x/repoexplain/pkg/repocontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialStream(t *testing.T, f *fixture, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvents(t *testing.T, conn *websocket.Conn) []Event {
	t.Helper()
	var events []Event
	for {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			var closeErr *websocket.CloseError
			require.True(t, errors.As(err, &closeErr), "unexpected read error: %v", err)
			return events
		}
		events = append(events, ev)
	}
}

func TestWebSocketStream(t *testing.T) {
	f := newFixture(t, false, nil)
	conn := dialStream(t, f, "/ws/acme/widgets?instructions=short")

	events := readEvents(t, conn)
	require.NotEmpty(t, events)

	var stages []string
	for _, ev := range events[:len(events)-1] {
		assert.Equal(t, EventStatus, ev.Type)
		stages = append(stages, ev.Stage)
	}
	assert.Equal(t, []string{
		repocontext.StageTreeFetched,
		repocontext.StageExploring,
		repocontext.StageFetching,
		ai.StageGenerating,
	}, stages)

	last := events[len(events)-1]
	assert.Equal(t, EventResult, last.Type)
	require.NotNil(t, last.Result)
	assert.Equal(t, "acme/widgets", last.Result.Repo)
	assert.Equal(t, "## What is this repo?", last.Result.Explanation)

	_, _, instructions := f.explainer.seen()
	assert.Equal(t, "short", instructions)
}

func TestWebSocketError(t *testing.T) {
	f := newFixture(t, false, nil)
	f.source.set(nil, &github.APIError{StatusCode: http.StatusNotFound})

	conn := dialStream(t, f, "/ws/acme/missing")
	events := readEvents(t, conn)
	require.Len(t, events, 1)
	assert.Equal(t, EventError, events[0].Type)
	assert.Equal(t, http.StatusNotFound, events[0].Status)
	assert.Contains(t, events[0].Message, "acme/missing")
}

func TestWebSocketRejectsOrigin(t *testing.T) {
	f := newFixture(t, false, nil)
	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws/acme/widgets"

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
