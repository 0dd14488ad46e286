/*
 * @Description: 统一配置管理 (ini 文件 + 环境变量覆盖)
 * @Author: 安知鱼
 * @Date: 2025-06-28 00:21:55
 * @LastEditTime: 2025-10-11 10:42:18
 * @LastEditors: 安知鱼
 */
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-ini/ini"
	"github.com/spf13/viper"
)

const (
	KeyServerPort        = "System.Port"
	KeyServerDebug       = "System.Debug"
	KeyServerRateLimit   = "System.RateLimit"
	KeyServerRateBurst   = "System.RateBurst"
	KeyServerCorsOrigins = "System.CorsOrigins"

	KeyDBType     = "Database.Type"
	KeyDBHost     = "Database.Host"
	KeyDBPort     = "Database.Port"
	KeyDBUser     = "Database.User"
	KeyDBPassword = "Database.Password"
	KeyDBName     = "Database.Name"
	KeyDBDebug    = "Database.Debug"

	KeyRedisAddr     = "Redis.Addr"
	KeyRedisPassword = "Redis.Password"
	KeyRedisDB       = "Redis.DB"

	KeyAuthIssuer     = "Auth.Issuer"
	KeyAuthJWKSURL    = "Auth.JWKSURL"
	KeyAuthHMACSecret = "Auth.HMACSecret"

	KeyWebhookSecret = "Webhook.Secret"

	KeyStorageProvider  = "Storage.Provider"
	KeyStorageEndpoint  = "Storage.Endpoint"
	KeyStorageRegion    = "Storage.Region"
	KeyStorageBucket    = "Storage.Bucket"
	KeyStorageAccessKey = "Storage.AccessKey"
	KeyStorageSecretKey = "Storage.SecretKey"
	KeyStoragePublicURL = "Storage.PublicURL"
	KeyStorageLocalPath = "Storage.LocalPath"
	KeyStorageUseSSL    = "Storage.UseSSL"

	KeyLogLevel  = "Log.Level"
	KeyLogFormat = "Log.Format"
)

// 定义所有已知的配置键，环境变量覆盖只对这些键生效
var allKeys = []string{
	KeyServerPort, KeyServerDebug, KeyServerRateLimit, KeyServerRateBurst, KeyServerCorsOrigins,
	KeyDBType, KeyDBHost, KeyDBPort, KeyDBUser, KeyDBPassword, KeyDBName, KeyDBDebug,
	KeyRedisAddr, KeyRedisPassword, KeyRedisDB,
	KeyAuthIssuer, KeyAuthJWKSURL, KeyAuthHMACSecret,
	KeyWebhookSecret,
	KeyStorageProvider, KeyStorageEndpoint, KeyStorageRegion, KeyStorageBucket,
	KeyStorageAccessKey, KeyStorageSecretKey, KeyStoragePublicURL, KeyStorageLocalPath, KeyStorageUseSSL,
	KeyLogLevel, KeyLogFormat,
}

const (
	defaultFilePath = "data/conf.ini"
	envPrefix       = "ANHEYU"
)

type Config struct {
	vp *viper.Viper
}

// NewConfig 从 data/conf.ini 加载默认值，再用环境变量覆盖
func NewConfig() (*Config, error) {
	return Load(defaultFilePath)
}

// Load 从指定路径加载配置，文件不存在时只依赖环境变量
func Load(filePath string) (*Config, error) {
	vp := viper.New()

	// --- 步骤 1: 使用 go-ini 从文件加载配置 (作为默认值) ---
	iniCfg, err := ini.Load(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("提示: 未找到 %s，将仅依赖环境变量或内部默认值。", filePath)
		} else {
			return nil, fmt.Errorf("错误: 解析配置文件 '%s' 失败: %w", filePath, err)
		}
	}

	if iniCfg != nil {
		for _, section := range iniCfg.Sections() {
			for _, key := range section.Keys() {
				viperKey := fmt.Sprintf("%s.%s", section.Name(), key.Name())
				if section.Name() == ini.DefaultSection {
					viperKey = key.Name()
				}
				vp.Set(viperKey, key.Value())
			}
		}
		log.Printf("从 %s 文件加载了默认配置。", filePath)
	}

	// --- 步骤 2: 手动检查并覆盖环境变量 ---
	envReplacer := strings.NewReplacer(".", "_")
	for _, key := range allKeys {
		// 例如 ANHEYU_DATABASE_HOST
		envVarName := fmt.Sprintf("%s_%s", envPrefix, envReplacer.Replace(strings.ToUpper(key)))
		if value, found := os.LookupEnv(envVarName); found {
			vp.Set(key, value)
			log.Printf("发现环境变量: %s, 已覆盖配置 '%s'。", envVarName, key)
		}
	}

	return &Config{vp: vp}, nil
}

// NewConfigFromValues 直接用键值对构造配置，主要用于测试
func NewConfigFromValues(values map[string]string) *Config {
	vp := viper.New()
	for k, v := range values {
		vp.Set(k, v)
	}
	return &Config{vp: vp}
}

func (c *Config) GetString(key string) string {
	return c.vp.GetString(key)
}

// GetStringDefault 在值为空时返回 def
func (c *Config) GetStringDefault(key, def string) string {
	if v := c.vp.GetString(key); v != "" {
		return v
	}
	return def
}

func (c *Config) GetInt(key string) int {
	return c.vp.GetInt(key)
}

func (c *Config) GetBool(key string) bool {
	return c.vp.GetBool(key)
}

func (c *Config) GetDuration(key string) time.Duration {
	return c.vp.GetDuration(key)
}

// GetStringSlice 读取逗号分隔的配置项
func (c *Config) GetStringSlice(key string) []string {
	raw := c.vp.GetString(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
