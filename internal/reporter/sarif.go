package reporter

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ethanolivertroy/dojo-gate/internal/models"
)

// SARIFReporter outputs new findings in SARIF format for code scanning uploads
type SARIFReporter struct{}

// SARIF structures
type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool          `json:"tool"`
	Results    []sarifResult      `json:"results"`
	Properties sarifRunProperties `json:"properties"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	ShortDescription sarifText       `json:"shortDescription"`
	DefaultConfig    sarifRuleConfig `json:"defaultConfiguration"`
	Properties       sarifProperties `json:"properties"`
}

type sarifText struct {
	Text string `json:"text"`
}

type sarifRuleConfig struct {
	Level string `json:"level"`
}

type sarifProperties struct {
	Tags             []string `json:"tags"`
	SecuritySeverity string   `json:"security-severity,omitempty"`
}

type sarifRunProperties struct {
	EngagementID int      `json:"engagementId"`
	Passed       bool     `json:"gatePassed"`
	Reasons      []string `json:"gateReasons,omitempty"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           int               `json:"ruleIndex"`
	Level               string            `json:"level"`
	Message             sarifText         `json:"message"`
	PartialFingerprints map[string]string `json:"partialFingerprints"`
}

// Report generates SARIF output for the new findings of the summary
func (r *SARIFReporter) Report(s *models.Summary) ([]byte, error) {
	rules, ruleIndexMap := r.buildRules(s.New.Findings)

	report := sarifReport{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{
					Name:           "dojo-gate",
					Version:        "1.0.0",
					InformationURI: "https://github.com/ethanolivertroy/dojo-gate",
					Rules:          rules,
				},
			},
			Results: r.buildResults(s.New.Findings, ruleIndexMap),
			Properties: sarifRunProperties{
				EngagementID: s.EngagementID,
				Passed:       s.Passed,
				Reasons:      s.Reasons,
			},
		}},
	}

	return json.MarshalIndent(report, "", "  ")
}

// ruleID groups findings by severity tier; titles are free text and too
// noisy to key rules on
func ruleID(sev models.Severity) string {
	return "dojo/" + string(sev)
}

func (r *SARIFReporter) buildRules(findings []models.Finding) ([]sarifRule, map[string]int) {
	ruleMap := make(map[string]sarifRule)

	for _, f := range findings {
		id := ruleID(f.Severity)
		if _, exists := ruleMap[id]; exists {
			continue
		}
		ruleMap[id] = sarifRule{
			ID:   id,
			Name: string(f.Severity) + "Finding",
			ShortDescription: sarifText{
				Text: fmt.Sprintf("New %s severity finding", f.Severity),
			},
			DefaultConfig: sarifRuleConfig{Level: sarifLevel(f.Severity)},
			Properties: sarifProperties{
				Tags:             []string{"security", "vulnerability", "defectdojo"},
				SecuritySeverity: securitySeverity(f.Severity),
			},
		}
	}

	// Stable rule order keeps reports diffable
	ids := make([]string, 0, len(ruleMap))
	for id := range ruleMap {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rules := make([]sarifRule, 0, len(ids))
	ruleIndexMap := make(map[string]int, len(ids))
	for _, id := range ids {
		ruleIndexMap[id] = len(rules)
		rules = append(rules, ruleMap[id])
	}

	return rules, ruleIndexMap
}

func (r *SARIFReporter) buildResults(findings []models.Finding, ruleIndexMap map[string]int) []sarifResult {
	results := make([]sarifResult, 0, len(findings))

	for _, f := range findings {
		id := ruleID(f.Severity)
		msg := f.Title
		if f.Description != "" {
			msg += ": " + f.Description
		}

		results = append(results, sarifResult{
			RuleID:    id,
			RuleIndex: ruleIndexMap[id],
			Level:     sarifLevel(f.Severity),
			Message:   sarifText{Text: msg},
			PartialFingerprints: map[string]string{
				"dojoFindingId": fmt.Sprintf("%d", f.ID),
			},
		})
	}

	return results
}

func sarifLevel(sev models.Severity) string {
	switch sev {
	case models.SeverityCritical, models.SeverityHigh:
		return "error"
	case models.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

func securitySeverity(sev models.Severity) string {
	switch sev {
	case models.SeverityCritical:
		return "9.5"
	case models.SeverityHigh:
		return "8.0"
	case models.SeverityMedium:
		return "5.5"
	case models.SeverityLow:
		return "3.0"
	default:
		return "0.0"
	}
}
