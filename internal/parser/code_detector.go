package parser

import (
	"regexp"
	"strings"
)

// CodeDetector spots verification codes in email text so ingested records can
// be tagged
type CodeDetector struct {
	patterns []*codePattern
}

type codePattern struct {
	tag   string
	regex *regexp.Regexp
}

// NewCodeDetector creates a new code detector
func NewCodeDetector() *CodeDetector {
	return &CodeDetector{
		patterns: []*codePattern{
			// OTP codes with keyword (4-8 digits)
			{
				tag:   "otp",
				regex: regexp.MustCompile(`(?i)(?:code|otp|pin|password)[\s:\-]*(\d{4,8})\b`),
			},
			// Verification codes
			{
				tag:   "verification",
				regex: regexp.MustCompile(`(?i)(?:verification|confirm)[\s\w]*[\s:\-]*(\d{4,8})\b`),
			},
			// Security codes
			{
				tag:   "security",
				regex: regexp.MustCompile(`(?i)(?:security|2fa|two.factor)[\s\w]*[\s:\-]*(\d{4,8})\b`),
			},
			// Token/key patterns
			{
				tag:   "token",
				regex: regexp.MustCompile(`(?i)(?:token|key)[\s:\-]*([A-Za-z0-9\-_]{8,32})\b`),
			},
		},
	}
}

// Tag returns the tag for the first verification code found in text, or ""
// when the text carries none
func (d *CodeDetector) Tag(text string) string {
	for _, pattern := range d.patterns {
		match := pattern.regex.FindStringSubmatch(text)
		if len(match) > 1 && len(strings.TrimSpace(match[1])) >= 4 {
			return pattern.tag
		}
	}
	return ""
}
