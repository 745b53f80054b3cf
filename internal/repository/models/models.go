package models

import (
	"database/sql"
	"time"
)

// Question maps the questions table.
type Question struct {
	ID             int64          `db:"id"`
	CorrectAnswer  string         `db:"correct_answer"`
	QuestionText   string         `db:"question_text"`
	OptionA        string         `db:"option_a"`
	OptionB        string         `db:"option_b"`
	OptionC        string         `db:"option_c"`
	OptionD        string         `db:"option_d"`
	Explanation    sql.NullString `db:"explanation"`
	MainCategoryID sql.NullInt64  `db:"main_category_id"`
	QuestionType   string         `db:"question_type"`
	ImagePath      sql.NullString `db:"image_path"`
	PassageName    sql.NullString `db:"passage_name"`
}

// Category maps main_categories and subcategories.
type Category struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Session maps previous_tests and level_determinations; the aggregate column is aliased.
type Session struct {
	ID           int64          `db:"id"`
	UserID       int64          `db:"user_id"`
	Timestamp    time.Time      `db:"timestamp"`
	NumQuestions int            `db:"num_questions"`
	Aggregate    float64        `db:"aggregate"`
	TimeTaken    float64        `db:"time_taken"`
	PDFPath      sql.NullString `db:"pdf_path"`
	Status       string         `db:"status"`
}

// Answer maps user_answers and level_determination_answers; the foreign key is aliased.
type Answer struct {
	ID         int64  `db:"id"`
	UserID     int64  `db:"user_id"`
	QuestionID int64  `db:"question_id"`
	UserAnswer string `db:"user_answer"`
	IsCorrect  bool   `db:"is_correct"`
	SessionID  int64  `db:"session_id"`
}

// User maps the users progress table.
type User struct {
	UserID             int64   `db:"user_id"`
	Points             int     `db:"points"`
	UsageSeconds       float64 `db:"usage_seconds"`
	TotalQuestions     int     `db:"total_questions"`
	PercentageExpected float64 `db:"percentage_expected"`
}
