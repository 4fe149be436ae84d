package client

import "time"

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Bio          string     `json:"bio"`
	Avatar       string     `json:"avatar"`
	Location     string     `json:"location"`
	Skills       []string   `json:"skills"`
	Role         string     `json:"role"`
	Rating       float64    `json:"rating"`
	ReviewCount  int        `json:"reviewCount"`
	SimbiBalance int        `json:"simbiBalance"`
	LastSeenAt   *time.Time `json:"lastSeenAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterData struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

type Service struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Kind        string     `json:"kind"`
	TradingType string     `json:"tradingType"`
	SimbiPrice  *int       `json:"simbiPrice,omitempty"`
	USDPrice    *float64   `json:"usdPrice,omitempty"`
	CategoryID  *string    `json:"categoryId,omitempty"`
	Tags        []string   `json:"tags"`
	Images      []string   `json:"images"`
	State       string     `json:"state"`
	ViewCount   int        `json:"viewCount"`
	LikeCount   int        `json:"likeCount"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type CreateServiceData struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Kind        string   `json:"kind"`
	TradingType string   `json:"tradingType"`
	SimbiPrice  *int     `json:"simbiPrice,omitempty"`
	USDPrice    *float64 `json:"usdPrice,omitempty"`
	CategoryID  *string  `json:"categoryId,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Images      []string `json:"images,omitempty"`
}

type UpdateServiceData struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Kind        *string  `json:"kind,omitempty"`
	TradingType *string  `json:"tradingType,omitempty"`
	SimbiPrice  *int     `json:"simbiPrice,omitempty"`
	USDPrice    *float64 `json:"usdPrice,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// SearchServicesParams maps to query parameters; zero values are omitted.
type SearchServicesParams struct {
	Query       string
	Kind        string
	TradingType string
	CategoryID  string
	Page        int
	Limit       int
	SortBy      string
	SortOrder   string
}

type ServiceList struct {
	Services []*Service `json:"services"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	Pages    int        `json:"pages"`
}

type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

type Participant struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Avatar    string `json:"avatar"`
	IsOnline  bool   `json:"isOnline"`
}

type Message struct {
	ID          string    `json:"id"`
	TalkID      string    `json:"talkId"`
	SenderID    string    `json:"senderId"`
	Content     string    `json:"content"`
	Attachments []string  `json:"attachments"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Offer struct {
	ID             string     `json:"id"`
	TalkID         string     `json:"talkId"`
	SenderID       string     `json:"senderId"`
	ReceiverID     string     `json:"receiverId"`
	Description    string     `json:"description"`
	SimbiAmount    *int       `json:"simbiAmount,omitempty"`
	ServiceOffered string     `json:"serviceOffered,omitempty"`
	Hours          *float64   `json:"hours,omitempty"`
	Status         string     `json:"status"`
	AcceptedAt     *time.Time `json:"acceptedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type Talk struct {
	ID            string       `json:"id"`
	SenderID      string       `json:"senderId"`
	ReceiverID    string       `json:"receiverId"`
	ServiceID     *string      `json:"serviceId,omitempty"`
	Subject       string       `json:"subject"`
	Status        string       `json:"status"`
	IsRead        bool         `json:"isRead"`
	LastMessageAt *time.Time   `json:"lastMessageAt,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	OtherUser     *Participant `json:"otherUser,omitempty"`
	LastMessage   *Message     `json:"lastMessage,omitempty"`
	Messages      []*Message   `json:"messages,omitempty"`
	Offers        []*Offer     `json:"offers,omitempty"`
}

type CreateTalkData struct {
	ReceiverID     string  `json:"receiverId"`
	ServiceID      *string `json:"serviceId,omitempty"`
	Subject        string  `json:"subject,omitempty"`
	InitialMessage string  `json:"initialMessage,omitempty"`
}

type SendMessageData struct {
	Content     string   `json:"content"`
	Attachments []string `json:"attachments,omitempty"`
}

type CreateOfferData struct {
	Description    string   `json:"description"`
	SimbiAmount    *int     `json:"simbiAmount,omitempty"`
	ServiceOffered string   `json:"serviceOffered,omitempty"`
	Hours          *float64 `json:"hours,omitempty"`
}
