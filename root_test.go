package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltaneutral/dnfilevault-go/internal/config"
	"github.com/deltaneutral/dnfilevault-go/internal/vault"
)

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.Contains(t, names, "sync")
	assert.Contains(t, names, "endpoints")
	assert.Contains(t, names, "groups")
	assert.Contains(t, names, "purchases")
}

func TestClassifyFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no healthy endpoint", vault.ErrNoHealthyEndpoint, "unreachable"},
		{"wrapped auth failure", errors.Join(errors.New("logging in"), vault.ErrInvalidCredentials), "incorrect email or password"},
		{"missing token field", vault.ErrNoToken, "no token"},
		{"missing credentials", config.ErrMissingCredentials, "DNFV_EMAIL"},
		{"unclassified", errors.New("disk full"), "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, classifyFatal(tt.err), tt.want)
		})
	}
}

func TestSyncCmd_ExclusiveTypeFlags(t *testing.T) {
	cmd := newSyncCmd()
	cmd.SetArgs([]string{"--groups-only", "--purchases-only"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}
