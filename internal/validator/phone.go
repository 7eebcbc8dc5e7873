package validator

import (
	"regexp"
	"strings"
)

// ネパールの携帯番号: 96/97/98始まりの10桁。+977の国番号は許容
var nepaliMobileRe = regexp.MustCompile(`^(?:\+977)?9[678]\d{8}$`)

// IsValidNepaliPhone は配達連絡先として使える番号かを判定する
func IsValidNepaliPhone(phone string) bool {
	s := strings.TrimSpace(phone)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	return nepaliMobileRe.MatchString(s)
}
