package database

import (
	"context"

	"walkforward/src/datamodels"
)

type RunsDatabase interface {
	SaveRun(ctx context.Context, manifest *datamodels.RunManifest) error
	UpdateRun(ctx context.Context, manifest *datamodels.RunManifest) error
	GetRun(ctx context.Context, runID string) (*datamodels.RunManifest, error)
	ListRuns(ctx context.Context) ([]*datamodels.RunManifest, error)
	SaveWindows(ctx context.Context, runID string, windows []datamodels.WindowRecord) error
	SaveTrades(ctx context.Context, runID string, trades []datamodels.TradeRecord) error
}

func (d *databaseImplementation) SaveRun(ctx context.Context, manifest *datamodels.RunManifest) error {
	return d.gormDb.WithContext(ctx).Create(manifest).Error
}

func (d *databaseImplementation) UpdateRun(ctx context.Context, manifest *datamodels.RunManifest) error {
	return d.gormDb.WithContext(ctx).Save(manifest).Error
}

func (d *databaseImplementation) GetRun(ctx context.Context, runID string) (*datamodels.RunManifest, error) {
	var manifest datamodels.RunManifest
	if err := d.gormDb.WithContext(ctx).First(&manifest, "run_id = ?", runID).Error; err != nil {
		return nil, err
	}
	return &manifest, nil
}

func (d *databaseImplementation) ListRuns(ctx context.Context) ([]*datamodels.RunManifest, error) {
	var manifests []*datamodels.RunManifest
	if err := d.gormDb.WithContext(ctx).Order("created_at desc").Find(&manifests).Error; err != nil {
		return nil, err
	}
	return manifests, nil
}

func (d *databaseImplementation) SaveWindows(ctx context.Context, runID string, windows []datamodels.WindowRecord) error {
	if len(windows) == 0 {
		return nil
	}
	records := make([]datamodels.WindowRecord, len(windows))
	copy(records, windows)
	for i := range records {
		records[i].RunID = runID
	}
	return d.gormDb.WithContext(ctx).Create(&records).Error
}

func (d *databaseImplementation) SaveTrades(ctx context.Context, runID string, trades []datamodels.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}
	records := make([]datamodels.TradeRecord, len(trades))
	copy(records, trades)
	for i := range records {
		records[i].RunID = runID
	}
	return d.gormDb.WithContext(ctx).Create(&records).Error
}
