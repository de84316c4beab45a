package ioutils

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

// KindVote tallies sampled values of one column and picks its kind.
type KindVote struct {
	num, integer, boolean, tm, str int
}

// Text records a textual sample. Blank strings are ignored.
func (k *KindVote) Text(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	if numre.MatchString(s) {
		k.num++
		if !strings.ContainsAny(s, ".eE") {
			k.integer++
		}
		return
	}
	switch strings.ToLower(s) {
	case "true", "false":
		k.boolean++
		return
	}
	if _, ok := j.ParseTime(s); ok {
		k.tm++
		return
	}
	k.str++
}

// Value records a decoded sample such as a JSON value.
func (k *KindVote) Value(v any) {
	switch t := v.(type) {
	case nil:
	case float64:
		k.num++
		if t == float64(int64(t)) {
			k.integer++
		}
	case int, int32, int64:
		k.num++
		k.integer++
	case bool:
		k.boolean++
	case time.Time:
		k.tm++
	case string:
		k.Text(t)
	default:
		k.str++
	}
}

// Kind picks the kind for the samples seen. Any plain string wins; numbers
// beat booleans; a column of only timestamps is a time column.
func (k *KindVote) Kind() j.Kind {
	switch {
	case k.str > 0:
		return j.KindString
	case k.tm > 0 && k.num == 0 && k.boolean == 0:
		return j.KindTime
	case k.tm > 0:
		return j.KindString
	case k.num > 0 && k.integer == k.num:
		return j.KindInt
	case k.num > 0:
		return j.KindFloat
	case k.boolean > 0:
		return j.KindBool
	}
	return j.KindString
}

// ParseCell converts s to a value of kind k. Blank or unparsable text
// reports false and is stored as null.
func ParseCell(k j.Kind, s string) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	switch k {
	case j.KindFloat:
		x, err := strconv.ParseFloat(s, 64)
		return x, err == nil
	case j.KindInt:
		if x, err := strconv.ParseInt(s, 10, 64); err == nil {
			return x, true
		}
		// integral values written as 1.0
		x, err := strconv.ParseFloat(s, 64)
		if err != nil || x != float64(int64(x)) {
			return nil, false
		}
		return int64(x), true
	case j.KindBool:
		x, err := strconv.ParseBool(strings.ToLower(s))
		return x, err == nil
	case j.KindTime:
		return j.ParseTime(s)
	}
	return s, true
}

// FormatTime is the timestamp text layout of every writer.
func FormatTime(t time.Time) string { return t.Format(time.RFC3339Nano) }

// FormatCell renders a non-null cell as text.
func FormatCell(c j.Column, r int) (string, bool) {
	v, ok := j.Value(c, r)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	case time.Time:
		return FormatTime(t), true
	case string:
		return t, true
	}
	return "", false
}
