package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAdvance(t *testing.T) {
	tests := []struct {
		name    string
		current ProjectStatus
		next    ProjectStatus
		want    bool
	}{
		{"lead to survey", StatusLead, StatusSiteSurvey, true},
		{"proposal to confirmed", StatusProposal, StatusConfirmed, true},
		{"skip a step", StatusLead, StatusProposal, false},
		{"backwards", StatusConfirmed, StatusProposal, false},
		{"same status", StatusLead, StatusLead, false},
		{"lost from lead", StatusLead, StatusLost, true},
		{"lost from installation", StatusUnderInstallation, StatusLost, true},
		{"nothing after subsidy credited", StatusCompletedSubsidyCredited, StatusLost, false},
		{"nothing after lost", StatusLost, StatusLead, false},
		{"completed to subsidy credited", StatusCompleted, StatusCompletedSubsidyCredited, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAdvance(tt.current, tt.next))
		})
	}
}

func TestParseStatusAndStage(t *testing.T) {
	st, ok := ParseStatus("LOST")
	assert.True(t, ok)
	assert.Equal(t, StatusLost, st)

	_, ok = ParseStatus("lost")
	assert.False(t, ok)

	stage, ok := ParseStage("AMC")
	assert.True(t, ok)
	assert.Equal(t, StageAMC, stage)

	_, ok = ParseStage("")
	assert.False(t, ok)
}
