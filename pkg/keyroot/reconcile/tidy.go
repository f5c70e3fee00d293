package reconcile

import (
	"regexp"
	"strings"
)

var (
	reSpaces         = regexp.MustCompile(`\s+`)
	reSpaceBefore    = regexp.MustCompile(` ([,;:.!?)\]])`)
	reSpaceAfterOpen = regexp.MustCompile(`([(\[]) `)
	reEmptyBrackets  = regexp.MustCompile(`\(\s*\)|\[\s*\]`)
	reRepeatedSep    = regexp.MustCompile(`([,;|/&-])(\s*[,;|/&-])+`)
	reTrailingHyphen = regexp.MustCompile(`([\p{L}\p{N}])-+(\s|$)`)
	reLeadingHyphen  = regexp.MustCompile(`(^|\s)-+([\p{L}\p{N}])`)
)

const edgeSeparators = " ,;:|/&-"

// tidy repairs the punctuation left behind after words are cut out of copy.
func tidy(s string) string {
	s = reSpaces.ReplaceAllString(s, " ")
	s = reEmptyBrackets.ReplaceAllString(s, "")
	s = reTrailingHyphen.ReplaceAllString(s, "$1$2")
	s = reLeadingHyphen.ReplaceAllString(s, "$1$2")
	s = reSpaces.ReplaceAllString(s, " ")
	s = reSpaceBefore.ReplaceAllString(s, "$1")
	s = reSpaceAfterOpen.ReplaceAllString(s, "$1")
	s = reRepeatedSep.ReplaceAllString(s, "$1")
	return strings.Trim(s, edgeSeparators)
}
