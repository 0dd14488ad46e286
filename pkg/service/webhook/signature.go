package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
)

const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"

	secretPrefix = "whsec_"
	// DefaultTolerance 是签名时间戳允许的最大偏差
	DefaultTolerance = 5 * time.Minute
)

// Verifier 校验 Svix 格式的 Webhook 签名
type Verifier struct {
	key       []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewVerifier 使用 whsec_ 前缀的 base64 密钥创建校验器
func NewVerifier(secret string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("Webhook 密钥未配置")
	}
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, secretPrefix))
	if err != nil {
		return nil, fmt.Errorf("Webhook 密钥不是合法的 base64: %w", err)
	}
	return &Verifier{key: key, tolerance: DefaultTolerance, now: time.Now}, nil
}

// Sign 计算 id.timestamp.body 的签名，返回 v1,<base64> 形式
func (v *Verifier) Sign(id string, ts time.Time, body []byte) string {
	return "v1," + base64.StdEncoding.EncodeToString(v.mac(id, strconv.FormatInt(ts.Unix(), 10), body))
}

func (v *Verifier) mac(id, ts string, body []byte) []byte {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(id))
	mac.Write([]byte{'.'})
	mac.Write([]byte(ts))
	mac.Write([]byte{'.'})
	mac.Write(body)
	return mac.Sum(nil)
}

// Verify 校验请求头中的签名与时间戳，失败时返回 ErrInvalidSignature
func (v *Verifier) Verify(header http.Header, body []byte) error {
	id := header.Get(HeaderID)
	ts := header.Get(HeaderTimestamp)
	sigs := header.Get(HeaderSignature)
	if id == "" || ts == "" || sigs == "" {
		return fmt.Errorf("%w: 缺少 svix 请求头", constant.ErrInvalidSignature)
	}

	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: 时间戳格式错误", constant.ErrInvalidSignature)
	}
	diff := v.now().Sub(time.Unix(sec, 0))
	if diff > v.tolerance || diff < -v.tolerance {
		return fmt.Errorf("%w: 时间戳超出允许范围", constant.ErrInvalidSignature)
	}

	expected := v.mac(id, ts, body)
	for _, entry := range strings.Fields(sigs) {
		version, sig, ok := strings.Cut(entry, ",")
		if !ok || version != "v1" {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(raw, expected) {
			return nil
		}
	}
	return fmt.Errorf("%w: 签名不匹配", constant.ErrInvalidSignature)
}
