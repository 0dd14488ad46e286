package identity

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
)

const (
	usernameMinLen   = 3
	usernameMaxLen   = 30
	fallbackUsername = "user"
)

var (
	reInvalidUsernameChars = regexp.MustCompile(`[^A-Za-z0-9_.]`)
	pinyinArgs             = pinyin.NewArgs()
)

// NormalizeUsername 把任意字符串转换为合法的用户名片段：
// 汉字转为拼音，去掉 [A-Za-z0-9_.] 以外的字符，结果为空时使用 "user"。不做长度裁剪。
func NormalizeUsername(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.Is(unicode.Han, r) {
			for _, py := range pinyin.LazyPinyin(string(r), pinyinArgs) {
				b.WriteString(py)
			}
			continue
		}
		b.WriteRune(r)
	}
	cleaned := reInvalidUsernameChars.ReplaceAllString(b.String(), "")
	if cleaned == "" {
		return fallbackUsername
	}
	return cleaned
}

// ClampUsername 不足 3 位时右侧补 0，超过 30 位时截断
func ClampUsername(s string) string {
	if len(s) < usernameMinLen {
		return s + strings.Repeat("0", usernameMinLen-len(s))
	}
	if len(s) > usernameMaxLen {
		return s[:usernameMaxLen]
	}
	return s
}

// withSuffix 在 base 后追加一个小于 10000 的随机数，必要时截断 base 保证追加的数字完整保留
func withSuffix(base string) string {
	suffix := strconv.Itoa(rand.IntN(10000))
	if len(base)+len(suffix) > usernameMaxLen {
		base = base[:usernameMaxLen-len(suffix)]
	}
	return ClampUsername(base + suffix)
}

// emailLocalPart 返回邮箱 @ 之前的部分
func emailLocalPart(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}

// displayName 按 "名 姓" > 用户名 > "User" 的顺序得到展示名
func displayName(firstName, lastName, username, def string) string {
	if name := strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName)); name != "" {
		return name
	}
	if username != "" {
		return username
	}
	return def
}
