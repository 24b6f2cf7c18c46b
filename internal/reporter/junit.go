package reporter

import (
	"encoding/xml"
	"fmt"

	"github.com/ethanolivertroy/dojo-gate/internal/models"
)

// JUnitReporter outputs each new finding as a failed test case, so CI
// systems that read JUnit XML show them in their test views
type JUnitReporter struct{}

type junitSuites struct {
	XMLName xml.Name     `xml:"testsuites"`
	Suites  []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Cases    []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Text    string `xml:",chardata"`
}

// Report generates JUnit XML for the given summary
func (r *JUnitReporter) Report(s *models.Summary) ([]byte, error) {
	suite := junitSuite{
		Name:  "DefectDojo",
		Tests: len(s.New.Findings),
		Cases: make([]junitCase, 0, len(s.New.Findings)),
	}

	for _, f := range s.New.Findings {
		suite.Cases = append(suite.Cases, junitCase{
			Name:      fmt.Sprintf("%s Severity: %s", f.Title, f.Severity),
			ClassName: s.ProductID,
			Failure: &junitFailure{
				Message: f.Title,
				Type:    "failure",
				Text:    f.Description,
			},
		})
		suite.Failures++
	}

	// A clean run still reports one passing case for the gate itself
	if len(suite.Cases) == 0 {
		suite.Tests = 1
		suite.Cases = append(suite.Cases, junitCase{Name: "No new findings", ClassName: s.ProductID})
	}

	out, err := xml.MarshalIndent(junitSuites{Suites: []junitSuite{suite}}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
