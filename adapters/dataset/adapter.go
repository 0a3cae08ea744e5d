package dataset

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/montanaflynn/stats"

	"adsight/domain/core"
	"adsight/domain/evidence"
	"adsight/internal"
	apperrors "adsight/internal/errors"
	"adsight/ports"
)

// baselineShare is the fraction of the daily series treated as the
// reference window; the remainder is the period under investigation.
const baselineShare = 0.7

// Adapter materializes engine evidence from an ad-performance dataset
// file. The file is read once and cached; repeated Evidence calls for
// different metric sets reuse the same table.
type Adapter struct {
	reader *DataReader
	ref    string
	logger *internal.Logger

	once  sync.Once
	table *Table
	err   error
}

var _ ports.DatasetPort = (*Adapter)(nil)

// NewAdapter creates a dataset adapter for a CSV or Excel file
func NewAdapter(filePath, sheet string) *Adapter {
	return &Adapter{
		reader: NewDataReader(filePath).WithSheet(sheet),
		ref:    "dataset:" + filePath,
		logger: internal.NewComponentLogger("DatasetAdapter"),
	}
}

// Evidence builds one sample pair and one daily time series per
// requested metric. A metric without a matching column is omitted, not
// an error; the engine reports it as missing input downstream.
func (a *Adapter) Evidence(ctx context.Context, metrics []core.MetricKey) (evidence.Evidence, error) {
	a.once.Do(func() {
		a.table, a.err = a.reader.ReadData()
	})
	if a.err != nil {
		return evidence.Evidence{}, apperrors.DatasetError("failed to load dataset", a.err)
	}
	if err := ctx.Err(); err != nil {
		return evidence.Evidence{}, err
	}

	dateIdx := a.columnIndex("date")
	if dateIdx < 0 {
		return evidence.Evidence{}, apperrors.DatasetError("dataset missing required 'date' column", nil)
	}

	ev := evidence.Evidence{
		Samples: make(map[core.MetricKey]evidence.SamplePair),
		Series:  make(map[core.MetricKey]evidence.TimeSeries),
		Refs:    []string{a.ref},
	}

	for _, metric := range metrics {
		colIdx := a.columnIndex(metric.String())
		if colIdx < 0 {
			a.logger.Warn("metric %s not present in %s, omitting", metric, a.ref)
			continue
		}

		series, err := a.dailySeries(metric, dateIdx, colIdx)
		if err != nil {
			return evidence.Evidence{}, err
		}
		if len(series.Points) < 2 {
			a.logger.Warn("metric %s has %d usable days, omitting", metric, len(series.Points))
			continue
		}

		values := series.Values()
		splitIdx := max(1, int(float64(len(values))*baselineShare))
		pair, err := evidence.NewSamplePair(metric, values[:splitIdx], values[splitIdx:])
		if err != nil {
			return evidence.Evidence{}, apperrors.DatasetError(fmt.Sprintf("failed to split windows for metric %s", metric), err)
		}

		ev.Samples[metric] = pair
		ev.Series[metric] = series
	}

	return ev, nil
}

// dailySeries aggregates the metric column into a per-day mean series,
// ordered by day. Rows with unparsable dates or non-numeric cells are
// skipped at this boundary; the engine only ever sees clean numbers.
func (a *Adapter) dailySeries(metric core.MetricKey, dateIdx, colIdx int) (evidence.TimeSeries, error) {
	byDay := make(map[time.Time][]float64)
	skipped := 0
	for _, row := range a.table.Rows {
		if dateIdx >= len(row) || colIdx >= len(row) {
			skipped++
			continue
		}
		day, err := parseDate(row[dateIdx])
		if err != nil {
			skipped++
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(row[colIdx]), 64)
		if err != nil {
			skipped++
			continue
		}
		day = day.Truncate(24 * time.Hour)
		byDay[day] = append(byDay[day], value)
	}
	if skipped > 0 {
		a.logger.Debug("metric %s: skipped %d unusable rows", metric, skipped)
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	points := make([]evidence.Point, 0, len(days))
	for _, day := range days {
		mean, err := stats.Mean(byDay[day])
		if err != nil {
			continue
		}
		points = append(points, evidence.Point{Timestamp: day, Value: mean})
	}

	series := evidence.TimeSeries{Metric: metric, Points: points}
	if err := series.Validate(); err != nil {
		return evidence.TimeSeries{}, apperrors.DatasetError("aggregated series violates ordering invariant", err)
	}
	return series, nil
}

func (a *Adapter) columnIndex(name string) int {
	for i, header := range a.table.Headers {
		if header == name {
			return i
		}
	}
	return -1
}
