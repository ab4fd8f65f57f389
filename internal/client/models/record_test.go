package models

import (
	"errors"
	"math"
	"testing"

	"github.com/dmitrijs2005/citybreaks/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() Record {
	return Record{
		ID:                "a1",
		Name:              "Paris",
		StartDate:         "2024-05-01",
		EndDate:           "2024-05-04",
		Price:             200,
		TransportIncluded: true,
		UserID:            "u1",
		Version:           3,
	}
}

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Record)
		wantErr string
	}{
		{name: "valid", mutate: func(r *Record) {}},
		{name: "no dates", mutate: func(r *Record) { r.StartDate, r.EndDate = "", "" }},
		{name: "rfc3339 dates", mutate: func(r *Record) {
			r.StartDate, r.EndDate = "2024-05-01T00:00:00Z", "2024-05-04T10:00:00Z"
		}},
		{name: "blank name", mutate: func(r *Record) { r.Name = "  " }, wantErr: "name is required"},
		{name: "negative price", mutate: func(r *Record) { r.Price = -1 }, wantErr: "price"},
		{name: "NaN price", mutate: func(r *Record) { r.Price = math.NaN() }, wantErr: "price"},
		{name: "negative version", mutate: func(r *Record) { r.Version = -1 }, wantErr: "version"},
		{name: "unknown status", mutate: func(r *Record) { r.Status = 7 }, wantErr: "unknown status 7"},
		{name: "bad date", mutate: func(r *Record) { r.StartDate = "tomorrow" }, wantErr: "startDate"},
		{name: "end before start", mutate: func(r *Record) { r.EndDate = "2024-04-01" }, wantErr: "before"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodeRecord(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		r, err := DecodeRecord([]byte(`{"_id":"x","name":"Rome","price":10,"status":2,"version":4}`))
		require.NoError(t, err)
		assert.Equal(t, "x", r.ID)
		assert.Equal(t, StatusPendingUpdate, r.Status)
		assert.Equal(t, int64(4), r.Version)
	})

	t.Run("missing status and version default to synced zero", func(t *testing.T) {
		r, err := DecodeRecord([]byte(`{"_id":"x","name":"Rome","price":10}`))
		require.NoError(t, err)
		assert.Equal(t, StatusSynced, r.Status)
		assert.Zero(t, r.Version)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := DecodeRecord([]byte(`{"_id":`))
		require.Error(t, err)
	})

	t.Run("wrong field type", func(t *testing.T) {
		_, err := DecodeRecord([]byte(`{"_id":"x","name":"Rome","price":"cheap"}`))
		require.Error(t, err)
	})

	t.Run("fails validation", func(t *testing.T) {
		_, err := DecodeRecord([]byte(`{"_id":"x","name":"","price":1}`))
		require.ErrorIs(t, err, common.ErrValidation)
	})
}

func TestRecord_EncodeUsesWireNames(t *testing.T) {
	b, err := validRecord().Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"_id":"a1","name":"Paris","startDate":"2024-05-01","endDate":"2024-05-04",
		"price":200,"transportIncluded":true,"userId":"u1","status":0,"version":3
	}`, string(b))
}

func TestRecord_NextEdit(t *testing.T) {
	existing := validRecord()
	existing.Status = StatusPendingUpdate
	next := existing.NextEdit()
	assert.Equal(t, int64(4), next.Version)
	assert.Equal(t, StatusSynced, next.Status)

	fresh := Record{Name: "Oslo"}.NextEdit()
	assert.Equal(t, int64(1), fresh.Version)

	queued := Record{ID: "_abc123xyz", Name: "Oslo", Version: 1, Status: StatusPendingCreate}.NextEdit()
	assert.Equal(t, int64(1), queued.Version)
}

func TestPlaceholderID(t *testing.T) {
	id, err := NewPlaceholderID()
	require.NoError(t, err)
	assert.Len(t, id, 10)
	assert.True(t, IsPlaceholderID(id))
	assert.False(t, IsPlaceholderID("65f0c2a1-4b1e-4d55-9a57-0a4f3f2a9c11"))
	assert.True(t, Record{ID: id}.IsNew())
	assert.True(t, Record{}.IsNew())
	assert.False(t, validRecord().IsNew())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "SYNCED", StatusSynced.String())
	assert.Equal(t, "PENDING_CREATE", StatusPendingCreate.String())
	assert.Equal(t, "PENDING_UPDATE", StatusPendingUpdate.String())
	assert.Equal(t, "PENDING_DELETE", StatusPendingDelete.String())
	assert.Equal(t, "Status(9)", Status(9).String())
	assert.False(t, StatusSynced.Pending())
	assert.True(t, StatusPendingDelete.Pending())
}
