package models

import "time"

// Review отзыв пользователя на произведение.
type Review struct {
	ID       int64     `json:"id"`
	TitleID  int64     `json:"-"`
	AuthorID int64     `json:"-"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	Score    int       `json:"score"`
	PubDate  time.Time `json:"pub_date"`
}

// ReviewInput данные для создания отзыва.
type ReviewInput struct {
	Text  string `json:"text" validate:"required"`
	Score int    `json:"score" validate:"required,min=1,max=10"`
}

// ReviewPatch частичное изменение отзыва.
type ReviewPatch struct {
	Text  *string `json:"text" validate:"omitempty,min=1"`
	Score *int    `json:"score" validate:"omitempty,min=1,max=10"`
}

// Comment комментарий к отзыву.
type Comment struct {
	ID       int64     `json:"id"`
	ReviewID int64     `json:"-"`
	AuthorID int64     `json:"-"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date"`
}

// CommentInput данные для создания или изменения комментария.
type CommentInput struct {
	Text string `json:"text" validate:"required"`
}

// CommentPatch частичное изменение комментария.
type CommentPatch struct {
	Text *string `json:"text" validate:"omitempty,min=1"`
}
