package webhook

import (
	"encoding/json"
	"fmt"

	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/identity"
)

// 身份提供方的事件类型
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Event 是解码后的 Webhook 事件，只有本包内的几种变体
type Event interface {
	Type() string
	isEvent()
}

type UserCreated struct{ Identity identity.Identity }

type UserUpdated struct{ Identity identity.Identity }

type UserDeleted struct{ Subject string }

// Unhandled 是不需要处理的事件
type Unhandled struct{ EventType string }

func (UserCreated) Type() string { return EventUserCreated }
func (UserUpdated) Type() string { return EventUserUpdated }
func (UserDeleted) Type() string { return EventUserDeleted }
func (e Unhandled) Type() string { return e.EventType }

func (UserCreated) isEvent() {}
func (UserUpdated) isEvent() {}
func (UserDeleted) isEvent() {}
func (Unhandled) isEvent()   {}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type emailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type userData struct {
	ID                    string         `json:"id"`
	Username              *string        `json:"username"`
	FirstName             *string        `json:"first_name"`
	LastName              *string        `json:"last_name"`
	ImageURL              *string        `json:"image_url"`
	EmailAddresses        []emailAddress `json:"email_addresses"`
	PrimaryEmailAddressID *string        `json:"primary_email_address_id"`
}

// primaryEmail 优先取 primary_email_address_id 指向的邮箱，否则取第一个
func (d userData) primaryEmail() string {
	if d.PrimaryEmailAddressID != nil {
		for _, e := range d.EmailAddresses {
			if e.ID == *d.PrimaryEmailAddressID && e.EmailAddress != "" {
				return e.EmailAddress
			}
		}
	}
	if len(d.EmailAddresses) > 0 {
		return d.EmailAddresses[0].EmailAddress
	}
	return ""
}

func (d userData) identity() identity.Identity {
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	var avatar *string
	if d.ImageURL != nil && *d.ImageURL != "" {
		avatar = d.ImageURL
	}
	return identity.Identity{
		Subject:   d.ID,
		Email:     d.primaryEmail(),
		Username:  deref(d.Username),
		FirstName: deref(d.FirstName),
		LastName:  deref(d.LastName),
		AvatarURL: avatar,
	}
}

// ParseEvent 把请求体解码为事件变体
func ParseEvent(body []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: 事件格式错误", constant.ErrInvalidInput)
	}

	switch env.Type {
	case EventUserCreated, EventUserUpdated:
		var d userData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("%w: 用户数据格式错误", constant.ErrInvalidInput)
		}
		if d.ID == "" {
			return nil, fmt.Errorf("%w: 缺少用户ID", constant.ErrInvalidInput)
		}
		if d.primaryEmail() == "" {
			return nil, fmt.Errorf("%w: 用户缺少邮箱", constant.ErrInvalidInput)
		}
		if env.Type == EventUserCreated {
			return UserCreated{Identity: d.identity()}, nil
		}
		return UserUpdated{Identity: d.identity()}, nil
	case EventUserDeleted:
		var d struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(env.Data, &d); err != nil || d.ID == "" {
			return nil, fmt.Errorf("%w: 缺少用户ID", constant.ErrInvalidInput)
		}
		return UserDeleted{Subject: d.ID}, nil
	default:
		return Unhandled{EventType: env.Type}, nil
	}
}
