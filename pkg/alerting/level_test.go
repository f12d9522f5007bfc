package alerting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/phasewatch/phasewatch/pkg/alerting"
)

func TestClassify(t *testing.T) {
	thresholds := alerting.Thresholds{Warning: 10, Critical: 20}

	tests := []struct {
		name  string
		value float64
		want  alerting.Level
	}{
		{"well below warning", 5, alerting.LevelNominal},
		{"negative value", -3.2, alerting.LevelNominal},
		{"exactly at warning stays nominal", 10, alerting.LevelNominal},
		{"just above warning", 10.01, alerting.LevelWarning},
		{"between thresholds", 15, alerting.LevelWarning},
		{"exactly at critical stays warning", 20, alerting.LevelWarning},
		{"just above critical", 20.01, alerting.LevelCritical},
		{"far above critical", 100, alerting.LevelCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, alerting.Classify(tt.value, thresholds))
		})
	}
}

func TestLevel_Ordering(t *testing.T) {
	assert.True(t, alerting.LevelNominal < alerting.LevelWarning)
	assert.True(t, alerting.LevelWarning < alerting.LevelCritical)
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "NOMINAL", alerting.LevelNominal.String())
	assert.Equal(t, "WARNING", alerting.LevelWarning.String())
	assert.Equal(t, "CRITICAL", alerting.LevelCritical.String())
}

func TestLevel_Tag(t *testing.T) {
	assert.Equal(t, "🟢", alerting.LevelNominal.Tag())
	assert.Equal(t, "🟠", alerting.LevelWarning.Tag())
	assert.Equal(t, "🔴", alerting.LevelCritical.Tag())
}

func TestPolicy_ReminderInterval(t *testing.T) {
	policy := alerting.Policy{
		WarningReminder:  60 * time.Second,
		CriticalReminder: 5 * time.Second,
	}

	assert.Equal(t, time.Duration(0), policy.ReminderInterval(alerting.LevelNominal))
	assert.Equal(t, 60*time.Second, policy.ReminderInterval(alerting.LevelWarning))
	assert.Equal(t, 5*time.Second, policy.ReminderInterval(alerting.LevelCritical))
}
