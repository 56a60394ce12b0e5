//go:build e2e && unix

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// startBazaar creates a workspace, starts the app in it and waits for the idle search box
func startBazaar(t *testing.T, config string) *TUITestFramework {
	t.Helper()
	tf := NewTUITest(t)
	t.Cleanup(tf.Cleanup)

	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err, "Failed to create test workspace")

	if config != "" {
		require.NoError(t, tf.WriteConfig(config), "Failed to write config")
	}

	require.NoError(t, tf.StartApp(), "Failed to start app")
	require.True(t, tf.Ready(), "Should show the idle search box")
	require.True(t, tf.SeePlain("bazaar"), "Should show bazaar title")
	return tf
}
