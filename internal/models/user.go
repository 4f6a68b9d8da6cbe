package models

type User struct {
	ID           int64
	Email        string
	PasswordHash string
}

type Profile struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}
