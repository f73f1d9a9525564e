package recipe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// 自由文字：「1 hour 30 minutes」「45 mins」
	textHoursPattern   = regexp.MustCompile(`(?i)(\d+)\s*(?:hours?|hrs?)\b`)
	textMinutesPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:minutes?|mins?)\b`)

	// ISO-8601：各單位獨立擷取，不要求 H 在 M 之前
	isoHoursPattern   = regexp.MustCompile(`(\d+)H`)
	isoMinutesPattern = regexp.MustCompile(`(\d+)M`)

	// 整串是否為 ISO-8601 時間格式，避免把「Prep 20 min」當成 ISO
	isoDurationPattern = regexp.MustCompile(`(?i)^P[\dYMWD]*(?:T[\d.HMS]*)?$`)
)

const isoDurationPrefix = "PT"

// ParseDuration 將自由文字或 ISO-8601 時間轉為標準 ISO-8601（如 PT1H30M）
// 空字串回傳空字串；找不到時數與分鐘數時回傳 PT0M
func ParseDuration(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var hours, minutes int
	if isoDurationPattern.MatchString(s) {
		upper := strings.ToUpper(s)
		hours = matchInt(isoHoursPattern, upper)
		minutes = matchInt(isoMinutesPattern, isoTimePart(upper))
	} else {
		hours = matchInt(textHoursPattern, s)
		minutes = matchInt(textMinutesPattern, s)
	}

	return composeISO(hours, minutes)
}

// isoTimePart 取出 T 之後的部分，避免把 P1M（月）當成分鐘
func isoTimePart(s string) string {
	if i := strings.Index(s, "T"); i >= 0 {
		return s[i:]
	}
	return ""
}

func composeISO(hours, minutes int) string {
	var b strings.Builder
	b.WriteString(isoDurationPrefix)
	if hours > 0 {
		b.WriteString(strconv.Itoa(hours))
		b.WriteString("H")
	}
	if minutes > 0 {
		b.WriteString(strconv.Itoa(minutes))
		b.WriteString("M")
	}
	if hours == 0 && minutes == 0 {
		b.WriteString("0M")
	}
	return b.String()
}

// RenderDuration 將 ISO-8601 時間轉為「1 h 30 m」格式
//
// 非 PT 開頭的字串原樣回傳；秒數一律捨去；
// 擷取不到時數與分鐘數（PT0M、PT、PTXYZ）時回傳原字串。
func RenderDuration(v interface{}) string {
	s := coerceDuration(v)
	if !strings.HasPrefix(s, isoDurationPrefix) {
		return s
	}

	var parts []string
	if hours := matchInt(isoHoursPattern, s); hours > 0 {
		parts = append(parts, fmt.Sprintf("%d h", hours))
	}
	if minutes := matchInt(isoMinutesPattern, s); minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d m", minutes))
	}
	if len(parts) == 0 {
		return s
	}
	return strings.Join(parts, " ")
}

// coerceDuration 轉為字串：nil、false、0、空字串回傳空字串；
// fmt.Stringer 與 error 使用其字串方法，其他型態回傳空字串
func coerceDuration(v interface{}) string {
	if shapeOf(v) == shapeNumber {
		if f, ok := toFloat(v); !ok || f == 0 {
			return ""
		}
		return formatNumber(v)
	}
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if !val {
			return ""
		}
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	case error:
		return val.Error()
	}
	return ""
}

// matchInt 取出第一個符合的數字，沒有符合時回傳 0
func matchInt(pattern *regexp.Regexp, s string) int {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
