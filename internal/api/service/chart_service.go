package service

import (
	"context"
	"sort"
	"strings"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/anthanhphan/olfactory-dashboard/internal/api/domain"
	"github.com/anthanhphan/olfactory-dashboard/internal/api/port"
)

const (
	fluorSummaryLimit = 200
	topRegions        = 20
)

// chartTheme mirrors the dashboard's light theme.
var chartTheme = map[string]any{
	"background": "transparent",
	"title":      map[string]any{"color": "#111827", "font": "Inter", "fontSize": 16, "fontWeight": 600},
	"axis":       map[string]any{"labelColor": "#374151", "titleColor": "#374151", "gridColor": "#e5e7eb"},
	"legend":     map[string]any{"labelColor": "#374151", "titleColor": "#374151"},
	"range":      map[string]any{"category": []string{"#2563eb", "#0ea5e9", "#10b981", "#7c8aa6", "#aab6cf"}},
}

// ChartServiceImpl turns catalog data into Vega-Lite specifications.
// Load failures are logged and rendered as empty placeholder charts.
type ChartServiceImpl struct {
	catalog port.Catalog
}

// Ensure ChartServiceImpl implements port.ChartService.
var _ port.ChartService = (*ChartServiceImpl)(nil)

func NewChartService(catalog port.Catalog) *ChartServiceImpl {
	return &ChartServiceImpl{catalog: catalog}
}

type regionValue struct {
	Region string  `json:"region"`
	Load   float64 `json:"load"`
	Pixels float64 `json:"pixels"`
}

// RabiesLoad charts the regions with the highest average load in rabies tracing.
func (s *ChartServiceImpl) RabiesLoad(ctx context.Context, filter domain.ChartFilter) domain.ChartSpec {
	rows, err := s.catalog.FluorSummary(ctx, fluorQuery(domain.ExperimentRabies, filter))
	if err != nil {
		logger.Warnw("Rabies chart failed", "error", err.Error())
		return withTheme(domain.PlaceholderChart("bar"))
	}

	values := topRegionValues(rows, func(v regionValue) float64 { return v.Load })
	return withTheme(domain.ChartSpec{
		Data: domain.ChartData{Values: values},
		Mark: map[string]any{"type": "bar", "cornerRadiusEnd": 3},
		Encoding: map[string]any{
			"x":     map[string]any{"field": "load", "type": "quantitative", "title": "Avg load", "axis": map[string]any{"grid": false}},
			"y":     map[string]any{"field": "region", "type": "nominal", "sort": "-x", "title": "Region", "axis": map[string]any{"labelLimit": 180}},
			"color": map[string]any{"field": "load", "type": "quantitative", "legend": nil, "scale": map[string]any{"scheme": "blues"}},
			"tooltip": []map[string]any{
				{"field": "region", "type": "nominal"},
				{"field": "load", "type": "quantitative", "title": "Avg load", "format": ".4f"},
				{"field": "pixels", "type": "quantitative", "title": "Avg pixels", "format": ".0f"},
			},
		},
	})
}

// DoubleInjection charts the regions with the largest average pixel area in double injections.
func (s *ChartServiceImpl) DoubleInjection(ctx context.Context, filter domain.ChartFilter) domain.ChartSpec {
	rows, err := s.catalog.FluorSummary(ctx, fluorQuery(domain.ExperimentDoubleInjection, filter))
	if err != nil {
		logger.Warnw("Double injection chart failed", "error", err.Error())
		return withTheme(domain.PlaceholderChart("bar"))
	}

	values := topRegionValues(rows, func(v regionValue) float64 { return v.Pixels })
	return withTheme(domain.ChartSpec{
		Data: domain.ChartData{Values: values},
		Mark: "bar",
		Encoding: map[string]any{
			"x":     map[string]any{"field": "pixels", "type": "quantitative", "title": "Avg pixels"},
			"y":     map[string]any{"field": "region", "type": "nominal", "sort": "-x", "title": "Region"},
			"color": map[string]any{"field": "pixels", "type": "quantitative", "legend": nil},
		},
	})
}

// ClusterSizes charts the number of cells per scRNA cluster of a sample.
func (s *ChartServiceImpl) ClusterSizes(ctx context.Context, sampleID string) domain.ChartSpec {
	if strings.TrimSpace(sampleID) == "" {
		return withTheme(domain.PlaceholderChart("bar"))
	}
	clusters, err := s.catalog.ListClusters(ctx, sampleID)
	if err != nil {
		logger.Warnw("Cluster chart failed", "sample_id", sampleID, "error", err.Error())
		return withTheme(domain.PlaceholderChart("bar"))
	}
	if len(clusters) == 0 {
		return withTheme(domain.PlaceholderChart("bar"))
	}

	values := make([]any, 0, len(clusters))
	for _, c := range clusters {
		values = append(values, map[string]any{"cluster": c.ClusterID, "cells": c.NCells})
	}
	return withTheme(domain.ChartSpec{
		Data: domain.ChartData{Values: values},
		Mark: "bar",
		Encoding: map[string]any{
			"x":     map[string]any{"field": "cluster", "type": "nominal", "sort": nil, "title": "Cluster"},
			"y":     map[string]any{"field": "cells", "type": "quantitative", "title": "Cells"},
			"color": map[string]any{"field": "cluster", "type": "nominal", "legend": nil},
		},
	})
}

// MarkerHeatmap charts marker gene log fold changes for one cluster.
func (s *ChartServiceImpl) MarkerHeatmap(ctx context.Context, sampleID, clusterID string) domain.ChartSpec {
	if strings.TrimSpace(sampleID) == "" || strings.TrimSpace(clusterID) == "" {
		return withTheme(domain.PlaceholderChart("rect"))
	}
	markers, err := s.catalog.ListMarkers(ctx, sampleID, clusterID)
	if err != nil {
		logger.Warnw("Marker heatmap failed", "sample_id", sampleID, "cluster_id", clusterID, "error", err.Error())
		return withTheme(domain.PlaceholderChart("rect"))
	}

	values := make([]any, 0, len(markers))
	for _, m := range markers {
		values = append(values, m)
	}
	return withTheme(domain.ChartSpec{
		Data: domain.ChartData{Values: values},
		Mark: "rect",
		Encoding: map[string]any{
			"x":     map[string]any{"field": "gene", "type": "nominal", "sort": nil, "title": "Gene"},
			"y":     map[string]any{"field": "cluster_id", "type": "nominal", "title": "Cluster"},
			"color": map[string]any{"field": "logfc", "type": "quantitative", "title": "logFC"},
		},
	})
}

func fluorQuery(experimentType string, filter domain.ChartFilter) domain.FluorQuery {
	subject := strings.TrimSpace(filter.SubjectID)
	if subject == "all" {
		subject = ""
	}
	return domain.FluorQuery{
		ExperimentType: experimentType,
		Hemisphere:     domain.HemisphereFilter(filter.Hemisphere),
		SubjectID:      subject,
		Limit:          fluorSummaryLimit,
	}
}

// topRegionValues keeps the regions ranked highest by key, missing averages counting as zero.
func topRegionValues(rows []domain.FluorSummaryRow, key func(regionValue) float64) []any {
	regions := make([]regionValue, 0, len(rows))
	for _, r := range rows {
		regions = append(regions, regionValue{
			Region: r.RegionName,
			Load:   valueOrZero(r.LoadAvg),
			Pixels: valueOrZero(r.RegionPixelsAvg),
		})
	}
	sort.SliceStable(regions, func(i, j int) bool {
		return key(regions[i]) > key(regions[j])
	})
	if len(regions) > topRegions {
		regions = regions[:topRegions]
	}

	values := make([]any, 0, len(regions))
	for _, r := range regions {
		values = append(values, r)
	}
	return values
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func withTheme(spec domain.ChartSpec) domain.ChartSpec {
	spec.Schema = domain.VegaLiteSchema
	spec.Config = chartTheme
	return spec
}
