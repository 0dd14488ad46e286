/*
 * @Description: 业务层通用错误定义
 * @Author: 安知鱼
 * @Date: 2025-10-02 15:20:44
 * @LastEditTime: 2025-10-09 11:02:13
 * @LastEditors: 安知鱼
 */
package constant

import (
	"errors"
	"fmt"
)

// 服务层返回的哨兵错误，处理器通过 errors.Is 映射为 HTTP 状态码
var (
	ErrUnauthorized     = errors.New("未登录或会话无效")
	ErrNotFound         = errors.New("资源不存在")
	ErrForbidden        = errors.New("无权执行此操作")
	ErrInvalidInput     = errors.New("请求参数无效")
	ErrInvalidIdentity  = errors.New("身份信息缺少主邮箱")
	ErrInvalidOperation = errors.New("不允许的操作")
	ErrInvalidSignature = errors.New("Webhook 签名校验失败")
	ErrUpstream         = errors.New("上游服务调用失败")
)

// WrapUpstream 把存储层或对象存储的错误包装为 ErrUpstream，保留原始错误链
func WrapUpstream(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, ErrUpstream, err)
}
