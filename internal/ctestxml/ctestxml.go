// Package ctestxml parses the Test.xml result file that ctest writes under
// <build-dir>/Testing/<tag>/. The parsed summary drives the unstable/failed
// decision and the review message.
package ctestxml

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/specialistvlad/cvpipe/internal/fsutil"
)

// Summary is the digest of one ctest run.
type Summary struct {
	Total       int
	Passed      int
	Failed      int
	FailedTests []string
}

// Parse reads a Test.xml document from raw bytes.
func Parse(data []byte) (*Summary, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse ctest xml: %w", err)
	}
	return summarize(doc)
}

// ParseFile reads a Test.xml document from disk.
func ParseFile(path string) (*Summary, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("failed to read ctest xml %q: %w", path, err)
	}
	return summarize(doc)
}

// FindAndParse locates Test.xml under the build directory's Testing tree and
// parses it. The intermediate directory is a timestamp tag ctest generates,
// so the file is found by walking rather than by path construction.
func FindAndParse(buildDir string) (*Summary, error) {
	path, err := fsutil.FindFile(buildDir, "Test.xml")
	if err != nil {
		return nil, fmt.Errorf("failed to search for Test.xml under %q: %w", buildDir, err)
	}
	if path == "" {
		return nil, fmt.Errorf("no Test.xml found under %q; did ctest run?", buildDir)
	}
	return ParseFile(path)
}

// summarize walks Site/Testing/Test elements and tallies their Status
// attributes.
func summarize(doc *etree.Document) (*Summary, error) {
	site := doc.SelectElement("Site")
	if site == nil {
		return nil, fmt.Errorf("ctest xml has no Site element")
	}
	testing := site.SelectElement("Testing")
	if testing == nil {
		return nil, fmt.Errorf("ctest xml has no Testing element")
	}

	summary := &Summary{}
	for _, test := range testing.SelectElements("Test") {
		summary.Total++
		name := ""
		if el := test.SelectElement("Name"); el != nil {
			name = el.Text()
		}
		switch test.SelectAttrValue("Status", "") {
		case "passed":
			summary.Passed++
		default:
			summary.Failed++
			summary.FailedTests = append(summary.FailedTests, name)
		}
	}
	return summary, nil
}

// String renders a one-line digest for logs and review messages.
func (s *Summary) String() string {
	if s.Failed == 0 {
		return fmt.Sprintf("%d/%d tests passed", s.Passed, s.Total)
	}
	return fmt.Sprintf("%d of %d tests failed", s.Failed, s.Total)
}
