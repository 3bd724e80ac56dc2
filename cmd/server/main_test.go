package main

import (
	"os"
	"testing"

	"github.com/jrsteele09/go-bnb-gateway/internal/config"
	"github.com/stretchr/testify/require"
)

func TestRun_StopsOnSignal(t *testing.T) {
	t.Setenv("PORT", "0")
	t.Setenv("API_BASE_URL", "http://127.0.0.1:1")

	stop := make(chan os.Signal, 1)
	for i := 0; i < 2; i++ {
		stop <- os.Interrupt
		require.NoError(t, run(config.New(), stop))
	}
	require.Empty(t, stop)
}

func TestNewHandler_RejectsBadAPIURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "not a url")

	_, err := newHandler(config.New())
	require.Error(t, err)
}
