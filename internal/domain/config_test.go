package domain_test

import (
	"testing"
	"time"

	"github.com/openkraft/codegate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := domain.DefaultConfig()
	assert.Equal(t, int64(domain.DefaultMaxFileBytes), cfg.MaxFileBytes)
	assert.Equal(t, domain.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, domain.FailOnBlocked, cfg.FailOn)
	assert.Empty(t, cfg.ExcludePaths)
	assert.Empty(t, cfg.SkipAnalyzers)
	assert.NoError(t, cfg.Validate())
}

func TestWithDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := domain.ProjectConfig{MaxFileBytes: 10, Timeout: time.Second, FailOn: domain.FailOnNever}.WithDefaults()
	assert.Equal(t, int64(10), cfg.MaxFileBytes)
	assert.Equal(t, time.Second, cfg.Timeout)
	assert.Equal(t, domain.FailOnNever, cfg.FailOn)
}

func TestProjectConfig_Fails(t *testing.T) {
	tests := []struct {
		failOn domain.FailOn
		status domain.DeploymentStatus
		want   bool
	}{
		{domain.FailOnBlocked, domain.StatusBlocked, true},
		{domain.FailOnBlocked, domain.StatusCaution, false},
		{domain.FailOnCaution, domain.StatusCaution, true},
		{domain.FailOnCaution, domain.StatusApproved, false},
		{domain.FailOnNever, domain.StatusBlocked, false},
		{"", domain.StatusBlocked, true},
	}
	for _, tt := range tests {
		cfg := domain.ProjectConfig{FailOn: tt.failOn}
		assert.Equal(t, tt.want, cfg.Fails(tt.status), "fail_on=%q status=%s", tt.failOn, tt.status)
	}
}

func TestProjectConfig_IsSkippedAnalyzer(t *testing.T) {
	cfg := domain.ProjectConfig{SkipAnalyzers: []string{domain.AnalyzerContent}}
	assert.True(t, cfg.IsSkippedAnalyzer("content"))
	assert.False(t, cfg.IsSkippedAnalyzer("ui"))
}

func TestProjectConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  domain.ProjectConfig
		msg  string
	}{
		{"negative bytes", domain.ProjectConfig{MaxFileBytes: -1}, "max_file_bytes"},
		{"negative workers", domain.ProjectConfig{Workers: -2}, "workers"},
		{"negative timeout", domain.ProjectConfig{Timeout: -time.Second}, "timeout"},
		{"score above range", domain.ProjectConfig{MinScore: 101}, "min_score"},
		{"unknown fail_on", domain.ProjectConfig{FailOn: "always"}, "fail_on"},
		{"unknown analyzer", domain.ProjectConfig{SkipAnalyzers: []string{"lint"}}, "lint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
