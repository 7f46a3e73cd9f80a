package models

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolutionContext_Key(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	tests := []struct {
		name string
		rc   ResolutionContext
		want string
	}{
		{name: "default branch", rc: ResolutionContext{}, want: "-"},
		{name: "branch", rc: ResolutionContext{Branch: "main"}, want: "main"},
		{name: "time travel", rc: ResolutionContext{Branch: "main", At: &at}, want: "main@2024-03-01T11:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rc.Key())
		})
	}
}

func TestResolutionContext_Context(t *testing.T) {
	assert.Equal(t, ResolutionContext{}, GetResolutionContext(context.Background()))

	rc := ResolutionContext{Branch: "feature"}
	ctx := WithResolutionContext(context.Background(), rc)
	assert.Equal(t, rc, GetResolutionContext(ctx))
}
