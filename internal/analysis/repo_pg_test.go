package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	record := Record{
		ID:               "a-1",
		WorkItemID:       "wi-1",
		AnalysisType:     TypeBusinessValue,
		Score:            0.72,
		Confidence:       0.8,
		UsedAI:           true,
		ModelUsed:        "llama3:8b",
		ProcessingTimeMs: 412.5,
		Insights:         []string{"Directly monetizable"},
		StructuredData:   map[string]any{"business_value_score": 72},
		CreatedAt:        time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO analyses").
		WithArgs(
			record.ID,
			record.WorkItemID,
			string(record.AnalysisType),
			record.Score,
			record.Confidence,
			record.UsedAI,
			record.ModelUsed,
			record.ProcessingTimeMs,
			sqlmock.AnyArg(), // insights JSONB
			sqlmock.AnyArg(), // structured_data JSONB
			nil,              // error_message
			record.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), record); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT (.+) FROM analyses").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(pgColumns()))

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPGRepoListByWorkItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	createdAt := time.Now().UTC()
	rows := sqlmock.NewRows(pgColumns()).
		AddRow("a-1", "wi-1", "business_value", 0.72, 0.8, true, "llama3:8b", 412.5,
			`["Directly monetizable"]`, `{"business_value_score":72}`, nil, createdAt).
		AddRow("a-2", "wi-1", "risk_assessment", 0.3, 0.35, false, nil, 2.1,
			`["Schedule pressure"]`, `{"overall_risk_score":30}`, nil, createdAt)

	mock.ExpectQuery("SELECT (.+) FROM analyses").
		WithArgs("wi-1", 50, 0).
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	records, err := repo.ListByWorkItem(context.Background(), "wi-1", 0, 0)
	if err != nil {
		t.Fatalf("ListByWorkItem: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].ModelUsed != "llama3:8b" {
		t.Fatalf("ModelUsed = %q", records[0].ModelUsed)
	}
	if records[0].StructuredData["business_value_score"].(float64) != 72 {
		t.Fatalf("StructuredData = %v", records[0].StructuredData)
	}
	if records[1].UsedAI {
		t.Fatal("second record should be a fallback result")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func pgColumns() []string {
	return []string{
		"id", "work_item_id", "analysis_type", "score", "confidence", "used_ai",
		"model_used", "processing_time_ms", "insights", "structured_data",
		"error_message", "created_at",
	}
}
