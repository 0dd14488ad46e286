/*
 * @Description: AWS S3 及兼容服务的存储提供者
 * @Author: 安知鱼
 * @Date: 2025-09-29 10:12:33
 * @LastEditTime: 2025-10-11 14:08:51
 * @LastEditors: 安知鱼
 */
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// S3Provider 使用 aws-sdk-go-v2 访问 S3 存储桶，配置 Endpoint 时以路径风格访问兼容服务
type S3Provider struct {
	client *s3.Client
	policy Policy
}

// NewS3Provider 是 S3Provider 的构造函数
func NewS3Provider(ctx context.Context, policy Policy) (*S3Provider, error) {
	region := policy.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(policy.AccessKey, policy.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("加载 S3 配置失败: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if policy.Endpoint != "" {
			o.BaseEndpoint = aws.String(ensureScheme(policy.Endpoint, policy.UseSSL))
			o.UsePathStyle = true
		}
	})
	zap.S().Infof("[S3] 客户端已创建 - bucket: %s, region: %s", policy.Bucket, region)
	policy.Region = region
	return &S3Provider{client: client, policy: policy}, nil
}

func (p *S3Provider) Upload(ctx context.Context, objectKey string, file io.Reader, size int64, contentType string) (*UploadResult, error) {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.policy.Bucket),
		Key:           aws.String(objectKey),
		Body:          file,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		zap.S().Errorf("[S3] 上传失败: key=%s, err=%v", objectKey, err)
		return nil, fmt.Errorf("上传文件到 S3 失败: %w", err)
	}
	return &UploadResult{Source: objectKey, URL: p.PublicURL(objectKey), Size: size, MimeType: contentType}, nil
}

func (p *S3Provider) Delete(ctx context.Context, objectKey string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.policy.Bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("从 S3 删除文件失败: %w", err)
	}
	return nil
}

func (p *S3Provider) IsExist(ctx context.Context, objectKey string) (bool, error) {
	_, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.policy.Bucket),
		Key:    aws.String(objectKey),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, err
}

func (p *S3Provider) PublicURL(objectKey string) string {
	switch {
	case p.policy.PublicURL != "":
		return joinURL(p.policy.PublicURL, objectKey)
	case p.policy.Endpoint != "":
		return joinURL(ensureScheme(p.policy.Endpoint, p.policy.UseSSL)+"/"+p.policy.Bucket, objectKey)
	default:
		return joinURL(fmt.Sprintf("https://%s.s3.%s.amazonaws.com", p.policy.Bucket, p.policy.Region), objectKey)
	}
}
