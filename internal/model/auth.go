package model

// TokenPayload is the minimal identity claim embedded in both token classes.
type TokenPayload struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenData is the success payload for register, login and refresh.
type TokenData struct {
	UserID       string `json:"userId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Profile is the user view returned by GET /profile: the record minus
// password hash and refresh token.
type Profile struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"firstName,omitempty"`
	LastName  string  `json:"lastName,omitempty"`
	FullName  string  `json:"fullName"`
	IsActive  bool    `json:"isActive"`
	LastLogin *string `json:"lastLogin"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}
