// Package convert turns recorded test activity trees into normalized
// report records.
package convert

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xcreports/xcallure/internal/model"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Activity titles starting with one of these prefixes carry report metadata
// instead of describing a real test step.
const (
	idPrefix          = "allure.id:"
	namePrefix        = "allure.name:"
	descriptionPrefix = "allure.description:"
	labelPrefix       = "allure.label."
	linkPrefix        = "allure.link."
	legacyLabelPrefix = "allure_label_"
	legacyLinkPrefix  = "allure_link_"
)

// asIDLabel is the special label that mirrors the test case id.
const asIDLabel = "AS_ID"

var annotationPrefixes = []string{
	idPrefix,
	namePrefix,
	descriptionPrefix,
	labelPrefix,
	linkPrefix,
	legacyLabelPrefix,
	legacyLinkPrefix,
}

// isAnnotation reports whether a title marks an annotation activity.
// Matching is on prefix alone: a malformed annotation still counts as one
// and is pruned from the step tree, it just contributes no metadata.
func isAnnotation(title string) bool {
	for _, prefix := range annotationPrefixes {
		if strings.HasPrefix(title, prefix) {
			return true
		}
	}

	return false
}

type annotationKind int

const (
	kindID annotationKind = iota
	kindName
	kindDescription
	kindLabel
	kindLink
)

type annotation struct {
	kind  annotationKind
	key   string
	value string
	link  model.Link
}

// annotationParsers are tried in order, the first successful parse wins.
// A title that matches a prefix but fails to parse contributes nothing.
type annotationParser func(title string) (annotation, bool)

var annotationParsers = []annotationParser{
	parseID,
	parseName,
	parseDescription,
	parseLabel,
	parseLink,
	parseLegacyLabel,
	parseLegacyLink,
}

func parseID(title string) (annotation, bool) {
	rest, ok := strings.CutPrefix(title, idPrefix)
	if !ok {
		return annotation{}, false
	}

	return annotation{kind: kindID, value: strings.TrimSpace(rest)}, true
}

func parseName(title string) (annotation, bool) {
	rest, ok := strings.CutPrefix(title, namePrefix)
	if !ok {
		return annotation{}, false
	}

	return annotation{kind: kindName, value: strings.TrimSpace(rest)}, true
}

func parseDescription(title string) (annotation, bool) {
	rest, ok := strings.CutPrefix(title, descriptionPrefix)
	if !ok {
		return annotation{}, false
	}

	return annotation{kind: kindDescription, value: strings.TrimSpace(rest)}, true
}

func parseLabel(title string) (annotation, bool) {
	rest, ok := strings.CutPrefix(title, labelPrefix)
	if !ok {
		return annotation{}, false
	}

	key, value, found := strings.Cut(rest, ":")
	if !found {
		return annotation{}, false
	}

	return annotation{kind: kindLabel, key: key, value: strings.TrimSpace(value)}, true
}

// linkPattern matches "name[type]:url" with an optional bracketed type.
// The name is the shortest non-empty run of characters before the colon.
var linkPattern = regexp.MustCompile(`^(.+?)(?:\[(.*?)\])?:(.*)$`)

func parseLink(title string) (annotation, bool) {
	rest, ok := strings.CutPrefix(title, linkPrefix)
	if !ok {
		return annotation{}, false
	}

	m := linkPattern.FindStringSubmatch(rest)
	if m == nil {
		return annotation{}, false
	}

	link := model.Link{
		Name: m[1],
		Type: m[2],
		URL:  strings.TrimSpace(m[3]),
	}

	return annotation{kind: kindLink, link: link}, true
}

func parseLegacyLabel(title string) (annotation, bool) {
	rest, ok := strings.CutPrefix(title, legacyLabelPrefix)
	if !ok {
		return annotation{}, false
	}

	parts := strings.SplitN(rest, "_", 2)
	if len(parts) != 2 {
		return annotation{}, false
	}

	return annotation{kind: kindLabel, key: parts[0], value: parts[1]}, true
}

func parseLegacyLink(title string) (annotation, bool) {
	rest, ok := strings.CutPrefix(title, legacyLinkPrefix)
	if !ok {
		return annotation{}, false
	}

	parts := strings.SplitN(rest, "_", 3)
	if len(parts) != 3 {
		return annotation{}, false
	}

	link := model.Link{
		Name: parts[0],
		Type: parts[1],
		URL:  parts[2],
	}

	return annotation{kind: kindLink, link: link}, true
}

// annotations accumulates the metadata extracted during one conversion.
// It is created fresh per test case, filled by one pre-order walk over the
// activity tree and consumed once when the report record is assembled.
type annotations struct {
	labels      map[string][]string
	links       []model.Link
	name        string
	description string
	testCaseID  string
}

func newAnnotations(tc model.TestCase) *annotations {
	a := &annotations{labels: map[string][]string{}}

	if len(tc.Summary.Path) > 0 {
		a.setLabel("parentSuite", tc.Summary.Path[0])
	}

	if tc.Summary.Identifier != "" {
		suite, _, _ := strings.Cut(tc.Summary.Identifier, "/")
		a.setLabel("suite", suite)
	}

	d := tc.Destination
	a.setLabel("host", fmt.Sprintf("%s (%s) on %s", d.Name, d.Identifier, d.MachineIdentifier))

	return a
}

func (a *annotations) setLabel(key, value string) {
	a.labels[key] = []string{value}
}

func (a *annotations) addLabel(key, value string) {
	a.labels[key] = append(a.labels[key], value)
}

// collect walks the activity tree depth-first in pre-order and applies
// every annotation it finds. Later matches overwrite the id, name and
// description, labels and links accumulate in traversal order.
func (a *annotations) collect(activities []model.Activity) {
	for _, act := range activities {
		a.apply(act.Title)
		a.collect(act.Subactivities)
	}
}

func (a *annotations) apply(title string) {
	for _, parse := range annotationParsers {
		ann, ok := parse(title)
		if !ok {
			continue
		}

		switch ann.kind {
		case kindID:
			a.testCaseID = ann.value
			a.setLabel(asIDLabel, ann.value)
		case kindName:
			a.name = ann.value
		case kindDescription:
			a.description = ann.value
		case kindLabel:
			a.addLabel(ann.key, ann.value)
		case kindLink:
			a.links = append(a.links, ann.link)
		}

		return
	}
}

// labelList flattens the accumulated label map. Keys are sorted to keep the
// output deterministic, values under one key keep their append order.
func (a *annotations) labelList() []model.Label {
	keys := maps.Keys(a.labels)
	slices.Sort(keys)

	labels := make([]model.Label, 0, len(keys))

	for _, key := range keys {
		for _, value := range a.labels[key] {
			labels = append(labels, model.Label{Name: key, Value: value})
		}
	}

	return labels
}
