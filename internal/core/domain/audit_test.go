package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/SscSPs/fincontrol/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() domain.AuditEvent {
	return domain.AuditEvent{
		TenantID:         "acme",
		Timestamp:        time.Date(2026, 4, 1, 9, 30, 0, 123456789, time.FixedZone("CET", 3600)),
		Actor:            "alice",
		ActionName:       "CREATE",
		EntityName:       "JOURNALENTRY",
		ResourceID:       "tx-1",
		OfficeID:         "office-1",
		PermissionCode:   "CREATE_JOURNALENTRY",
		ProcessingResult: domain.ResultProcessed,
		Detail: domain.AuditDetail{
			Operation: "journalentry.create",
			Changes: map[string]any{
				"totalDebits": decimal.RequireFromString("100.50"),
				"lineCount":   2,
			},
		},
	}
}

func TestAuditEvent_SealNormalizes(t *testing.T) {
	e := sampleEvent()
	e.Seal()

	assert.Equal(t, time.UTC, e.Timestamp.Location())
	assert.Equal(t, 0, e.Timestamp.Nanosecond()%1000, "timestamp keeps microsecond precision only")
	assert.Equal(t, "100.5", e.Detail.Changes["totalDebits"])
	assert.Equal(t, float64(2), e.Detail.Changes["lineCount"])
	assert.Len(t, e.Digest, 64)
	assert.True(t, e.Verify())
}

func TestAuditEvent_DigestSurvivesJSONRoundTrip(t *testing.T) {
	e := sampleEvent()
	e.Seal()

	b, err := json.Marshal(e)
	require.NoError(t, err)
	var decoded domain.AuditEvent
	require.NoError(t, json.Unmarshal(b, &decoded))
	// TenantID is not serialized; storage keeps it in its own column.
	decoded.TenantID = e.TenantID

	assert.True(t, decoded.Verify())
}

func TestAuditEvent_VerifyDetectsTampering(t *testing.T) {
	e := sampleEvent()
	e.Seal()

	tampered := e
	tampered.Actor = "mallory"
	assert.False(t, tampered.Verify())

	tampered = e
	tampered.Detail.Changes = map[string]any{"totalDebits": "1"}
	assert.False(t, tampered.Verify())

	unsealed := sampleEvent()
	assert.False(t, unsealed.Verify())
}

func TestAuditEvent_DigestIgnoresID(t *testing.T) {
	e := sampleEvent()
	e.Seal()
	before := e.Digest
	e.ID = 42
	assert.Equal(t, before, e.ComputeDigest())
}

func TestNormalizeChanges_Empty(t *testing.T) {
	assert.Nil(t, domain.NormalizeChanges(nil))
	assert.Nil(t, domain.NormalizeChanges(map[string]any{}))
}
