package users

import "time"

// User は users コレクションの1ドキュメント
type User struct {
	ID        string    `bson:"_id" json:"id"`
	Fullname  string    `bson:"fullname" json:"fullname"`
	Email     string    `bson:"email" json:"email"`
	Role      string    `bson:"role" json:"role"` // "admin" | "employee"
	Active    bool      `bson:"active" json:"active"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// UnknownUserName は削除済みユーザ等、参照先が解決できない場合の表示名
const UnknownUserName = "Unknown User"

// Ref is the caller-facing shape of a user reference inside history views.
type Ref struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname"`
}
