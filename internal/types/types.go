// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"time"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

type Plan string

const (
	PlanFree Plan = "FREE"
	PlanPro  Plan = "PRO"
)

type Tenant struct {
	ID        string    `db:"id" json:"id"`
	Slug      string    `db:"slug" json:"slug"`
	Name      string    `db:"name" json:"name"`
	Plan      Plan      `db:"plan" json:"plan"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type User struct {
	ID           string    `db:"id" json:"id"`
	TenantID     string    `db:"tenant_id" json:"tenant_id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

func (u *User) GetID() string            { return u.ID }
func (u *User) SetID(id string)          { u.ID = id }
func (u *User) GetTenantID() string      { return u.TenantID }
func (u *User) SetTenantID(id string)    { u.TenantID = id }
func (u *User) SetCreatedAt(t time.Time) { u.CreatedAt = t }

type Note struct {
	ID        string    `db:"id" json:"id"`
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (n *Note) GetID() string            { return n.ID }
func (n *Note) SetID(id string)          { n.ID = id }
func (n *Note) GetTenantID() string      { return n.TenantID }
func (n *Note) SetTenantID(id string)    { n.TenantID = id }
func (n *Note) GetUserID() string        { return n.UserID }
func (n *Note) SetUserID(id string)      { n.UserID = id }
func (n *Note) SetCreatedAt(t time.Time) { n.CreatedAt = t; n.UpdatedAt = t }
