package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/mathmusci/optivenue/config"
	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "optivenue", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=optivenue sslmode=disable", DSN(cfg))
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"bad password", fmt.Errorf("failed to ping database: %w", &pq.Error{Code: "28P01"}), true},
		{"unknown role", &pq.Error{Code: "28000"}, true},
		{"unknown database", &pq.Error{Code: "3D000"}, true},
		{"server starting up", &pq.Error{Code: "57P03"}, false},
		{"connection refused", errors.New("dial tcp: connection refused"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAuthError(tt.err))
		})
	}
}
