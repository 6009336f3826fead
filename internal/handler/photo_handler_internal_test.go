package handler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatUploadLimit(t *testing.T) {
	require.Equal(t, "10MB", formatUploadLimit(10*1024*1024))
	require.Equal(t, "1MB", formatUploadLimit(1024*1024+512))
	require.Equal(t, "512KB", formatUploadLimit(512*1024))
	require.Equal(t, "1KB", formatUploadLimit(8))
}
