/*
 * @Description: 照片元数据提取与缩略图生成
 * @Author: 安知鱼
 * @Date: 2025-10-04 11:26:53
 * @LastEditTime: 2025-10-11 16:02:19
 * @LastEditors: 安知鱼
 */
package utility

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	exif "github.com/dsoprea/go-exif/v3"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

const (
	exifDateLayout = "2006:01:02 15:04:05"

	// MaxDecodePixels 是允许完整解码的最大像素数，超过时只使用头部信息
	MaxDecodePixels = 40_000_000
)

// ImageInfo 是一张照片可提取的元数据，提取失败的字段为 nil
type ImageInfo struct {
	Format        string
	Width         int
	Height        int
	AspectRatio   *float64
	DominantColor *string
	TakenAt       *time.Time
	Thumbnail     []byte // JPEG 编码的缩略图
}

// ImageService 负责从上传的图片中提取宽高比、主色调、拍摄时间并生成缩略图
type ImageService struct {
	color        *ColorService
	thumbMaxSize int
}

func NewImageService(color *ColorService, thumbMaxSize int) *ImageService {
	return &ImageService{color: color, thumbMaxSize: thumbMaxSize}
}

// Inspect 只解析图片头部，返回格式与宽高
func (s *ImageService) Inspect(data []byte) (format string, width, height int, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", 0, 0, fmt.Errorf("无法识别的图片格式: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", 0, 0, fmt.Errorf("图片尺寸无效: %dx%d", cfg.Width, cfg.Height)
	}
	return format, cfg.Width, cfg.Height, nil
}

// Analyze 尽力提取所有元数据。任何一步失败都只记录日志，不返回错误，
// 调用方据此决定写入 nil。数据不是图片时返回的 ImageInfo 为空值。
func (s *ImageService) Analyze(data []byte) *ImageInfo {
	info := &ImageInfo{}

	format, width, height, err := s.Inspect(data)
	if err != nil {
		zap.S().Debugf("[图片服务] 跳过元数据提取: %v", err)
		return info
	}
	info.Format = format

	if width*height > MaxDecodePixels {
		zap.S().Warnf("[图片服务] 图片像素过多，跳过解码: %dx%d", width, height)
		ratio := float64(width) / float64(height)
		info.Width, info.Height, info.AspectRatio = width, height, &ratio
		info.TakenAt = s.takenAt(data)
		return info
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		zap.S().Warnf("[图片服务] 解码图片失败: %v", err)
		ratio := float64(width) / float64(height)
		info.Width, info.Height, info.AspectRatio = width, height, &ratio
		return info
	}

	// 以纠正方向后的尺寸为准
	bounds := img.Bounds()
	info.Width, info.Height = bounds.Dx(), bounds.Dy()
	ratio := float64(info.Width) / float64(info.Height)
	info.AspectRatio = &ratio

	thumb := imaging.Fit(img, s.thumbMaxSize, s.thumbMaxSize, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(82)); err != nil {
		zap.S().Warnf("[图片服务] 生成缩略图失败: %v", err)
	} else {
		info.Thumbnail = buf.Bytes()
	}

	if s.color != nil {
		if c, err := s.color.GetPrimaryColor(thumb); err != nil {
			zap.S().Debugf("[图片服务] 提取主色调失败: %v", err)
		} else {
			info.DominantColor = &c
		}
	}

	info.TakenAt = s.takenAt(data)
	return info
}

func (s *ImageService) takenAt(data []byte) *time.Time {
	t, err := TakenAt(data)
	if err != nil {
		zap.S().Debugf("[图片服务] 读取拍摄时间失败: %v", err)
		return nil
	}
	return t
}

// TakenAt 从 EXIF 的 DateTimeOriginal 读取拍摄时间，没有 EXIF 时返回 (nil, nil)。
// EXIF 时间没有时区信息，按 UTC 处理。
func TakenAt(data []byte) (*time.Time, error) {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return nil, nil
		}
		return nil, err
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil, err
	}

	var fallback string
	for _, entry := range entries {
		value, ok := entry.Value.(string)
		if !ok {
			continue
		}
		switch entry.TagName {
		case "DateTimeOriginal":
			return parseExifTime(value)
		case "DateTime":
			fallback = value
		}
	}
	if fallback != "" {
		return parseExifTime(fallback)
	}
	return nil, nil
}

func parseExifTime(value string) (*time.Time, error) {
	value = strings.TrimRight(strings.TrimSpace(value), "\x00")
	t, err := time.ParseInLocation(exifDateLayout, value, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("解析 EXIF 时间 %q 失败: %w", value, err)
	}
	return &t, nil
}

// ContentTypeForFormat 把 image 包识别出的格式名转换为 MIME 类型
func ContentTypeForFormat(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
