/*
 * @Description: ID 与存储对象键生成
 * @Author: 安知鱼
 * @Date: 2025-06-17 20:38:15
 * @LastEditTime: 2025-10-04 16:52:33
 * @LastEditors: 安知鱼
 */
package idgen

import (
	"fmt"
	"math/rand/v2"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sqids/sqids-go"
)

var (
	sqidsOnce    sync.Once
	sqidsEncoder *sqids.Sqids
	sqidsErr     error
)

// NewID 生成记录主键 (UUID v4 字符串)
func NewID() string {
	return uuid.NewString()
}

// IsValidID 判断字符串是否为合法的 UUID，用于在查询前拦截格式错误的 ID
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func encoder() (*sqids.Sqids, error) {
	sqidsOnce.Do(func() {
		sqidsEncoder, sqidsErr = sqids.New(sqids.Options{
			MinLength: 8,
			Alphabet:  "abcdefghijklmnopqrstuvwxyz0123456789",
		})
		if sqidsErr != nil {
			sqidsErr = fmt.Errorf("初始化 Sqids 编码器失败: %w", sqidsErr)
		}
	})
	return sqidsEncoder, sqidsErr
}

// RandomToken 生成一段短小的小写字母数字随机串
func RandomToken() (string, error) {
	s, err := encoder()
	if err != nil {
		return "", err
	}
	token, err := s.Encode([]uint64{rand.Uint64N(1 << 48), rand.Uint64N(1 << 32)})
	if err != nil {
		return "", fmt.Errorf("编码随机串失败: %w", err)
	}
	return token, nil
}

// ObjectKey 生成照片在对象存储中的键，格式为 userID/albumID/<毫秒时间戳>-<随机串>.<扩展名>
func ObjectKey(userID, albumID, filename string, now time.Time) (string, error) {
	token, err := RandomToken()
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" || len(ext) > 8 || strings.IndexFunc(ext, notAlnum) >= 0 {
		ext = "jpg"
	}
	return fmt.Sprintf("%s/%s/%d-%s.%s", userID, albumID, now.UnixMilli(), token, ext), nil
}

func notAlnum(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
}
