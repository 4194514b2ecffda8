package domain

import "time"

const RoleClient = "client"
const RoleAdmin = "admin"

type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Age       *int32    `db:"age" json:"age,omitempty"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password" json:"-"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	DeletedAt Deletion  `db:"deleted_at" json:"deletedAt"`
}

type UpdateUserInput struct {
	Name  *string `json:"name"`
	Age   *int32  `json:"age"`
	Email *string `json:"email" validate:"omitempty,email"`
}
