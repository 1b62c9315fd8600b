package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lai323/lutego/bridge"
	lgconfig "github.com/lai323/lutego/config"
	"github.com/lai323/lutego/dict"
	"github.com/lai323/lutego/lute"
	"github.com/lai323/lutego/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntArg(t *testing.T) {
	v, err := intArg([]string{"482"}, 0, "book id")
	require.NoError(t, err)
	assert.Equal(t, 482, v)

	_, err = intArg([]string{"0"}, 0, "book id")
	assert.EqualError(t, err, `invalid book id "0"`)
	_, err = intArg([]string{"x"}, 0, "term id")
	assert.Error(t, err)
}

func TestDispatchLines(t *testing.T) {
	translations := dict.NewTranslationCacheManager()
	d := bridge.NewDispatcher(translations, nil, nil)

	in := strings.NewReader(`{"type":"dictionaryTextSelected","text":"cat"}

{"type":"dictionaryTextSelected","text":"feline"}
`)
	require.NoError(t, dispatchLines(context.Background(), in, d))
	slot, ok := translations.TemporaryTranslation()
	assert.True(t, ok)
	assert.Equal(t, "cat, feline", slot)

	in = strings.NewReader(`{"type":"nope"}
not json
{"type":"dictionaryTextSelected","text":7}
{"type":"bookSelected","bookId":0}
{"type":"dictionaryTextSelected","text":"kitten"}
`)
	require.NoError(t, dispatchLines(context.Background(), in, d))
	slot, _ = translations.TemporaryTranslation()
	assert.Equal(t, "cat, feline, kitten", slot)
}

func TestDispatchLinesStopsOnHandlerError(t *testing.T) {
	d := bridge.NewDispatcher(nil, nil, nil, bridge.OnBookSelected(func(context.Context, int) error {
		return lute.ErrTransport
	}))
	err := dispatchLines(context.Background(), strings.NewReader(`{"type":"bookSelected","bookId":3}`), d)
	assert.ErrorIs(t, err, lute.ErrTransport)
}

func TestUserError(t *testing.T) {
	assert.Equal(t, repo.MessageSettings, userError(fmt.Errorf("x: %w", lgconfig.ErrServerURLNotSet)))
	assert.Equal(t, "invalid status", userError(fmt.Errorf("invalid status")))

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := lute.NewClient(lgconfig.Config{ServerURL: srv.URL, Timeout: time.Second}, nil)
	_, err := client.PostForm(context.Background(), lute.PathTermEdit(5), nil)
	require.Error(t, err)
	msg := userError(fmt.Errorf("repo: save term 5: %w", err))
	assert.Equal(t, repo.MessageGeneric, msg)
	assert.NotContains(t, msg, "connection refused")

	assert.Equal(t, repo.MessageGeneric, userError(&lute.StatusError{Method: "GET", URL: "/", Status: 500}))
}

type chromeHidden bool

func (c chromeHidden) ChromeHidden() (bool, error) { return bool(c), nil }

func TestInjectPage(t *testing.T) {
	var out bytes.Buffer
	sched := &waitScheduler{}
	l := bridge.NewLifecycle(&printEvaluator{w: &out}, chromeHidden(true), nil,
		bridge.WithScheduler(sched),
		bridge.WithThemeClass("lutego-theme"),
	)
	l.SetCustomStyles(".word { color: #eee; }")

	injectPage(context.Background(), l, sched, "http://localhost:5001/read/482")

	text := out.String()
	assert.Equal(t, 1+len(bridge.InjectRetryDelays)+1, strings.Count(text, "// injection "))
	assert.Contains(t, text, "// injection 5\n")
	assert.Equal(t, 1+len(bridge.InjectRetryDelays)+1, strings.Count(text, `"lutego-theme"`))

	final := text[strings.Index(text, "// injection 5\n"):]
	assert.Contains(t, final, `".word { color: #eee; }"`)
	assert.Contains(t, final, `classList.add("lutego-chrome-hidden")`)
	assert.NotContains(t, text[:strings.Index(text, "// injection 5\n")], "lutego-chrome-hidden")
}
