package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/dmitrijs2005/citybreaks/internal/client/engine"
	"github.com/dmitrijs2005/citybreaks/internal/client/models"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func paris() models.Record {
	return models.Record{
		ID:                "a1",
		Name:              "Paris",
		StartDate:         "2025-06-01",
		EndDate:           "2025-06-03",
		Price:             200,
		TransportIncluded: true,
		Version:           1,
	}
}

func TestRenderRecords(t *testing.T) {
	records := []models.Record{
		paris(),
		{ID: "_k3j9x0a1b", Name: "A very long trip name to Lisbon", StartDate: "2025-07-10", EndDate: "2025-07-20",
			Price: 1234.5, Version: 1, Status: models.StatusPendingCreate},
		{ID: "x7", Name: "Oslo", StartDate: "2025-09-01", EndDate: "2025-09-02", Version: 4, Status: models.StatusPendingDelete},
	}

	var buf bytes.Buffer
	renderRecords(&buf, records)

	g := goldie.New(t)
	g.Assert(t, "records", buf.Bytes())
}

func TestRenderRecords_Empty(t *testing.T) {
	var buf bytes.Buffer
	renderRecords(&buf, nil)
	assert.Equal(t, "no records\n", buf.String())
}

func TestRenderRecord(t *testing.T) {
	var buf bytes.Buffer
	renderRecord(&buf, paris())

	g := goldie.New(t)
	g.Assert(t, "record", buf.Bytes())
}

func TestRenderConflict(t *testing.T) {
	remote := paris()
	remote.EndDate = "2025-06-05"
	remote.Price = 250
	remote.Version = 3

	var buf bytes.Buffer
	renderConflict(&buf, models.ConflictSnapshot{Remote: remote, LocalVersion: 2, DetectedAt: time.Now()})

	g := goldie.New(t)
	g.Assert(t, "conflict", buf.Bytes())
}

func TestRenderStatus(t *testing.T) {
	var buf bytes.Buffer
	renderStatus(&buf, "alice", engine.State{Notice: "saved locally, will sync later"}, 2)

	g := goldie.New(t)
	g.Assert(t, "status", buf.Bytes())
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "Rome", shorten("Rome", 16))
	assert.Equal(t, "Zürich und B...", shorten("Zürich und Basel", 15))
}
