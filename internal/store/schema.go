package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column definitions, laid out the way ent's generated migrate
// package declares them. Migration runs through ent's Atlas-backed migrator.
var (
	// UsersColumns holds the columns for the "users" table.
	UsersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64},
		{Name: "name", Type: field.TypeString, Default: ""},
		{Name: "username", Type: field.TypeString, Default: ""},
		{Name: "phone", Type: field.TypeString, Default: ""},
		{Name: "gender", Type: field.TypeString, Default: ""},
		{Name: "points", Type: field.TypeInt, Default: 0},
		{Name: "usage_seconds", Type: field.TypeFloat64, Default: 0},
		{Name: "answered_questions", Type: field.TypeInt, Default: 0},
		{Name: "expected_percentage", Type: field.TypeFloat64, Default: 0},
		{Name: "daily_gifts_used", Type: field.TypeInt, Default: 0},
		{Name: "last_gift_day", Type: field.TypeString, Default: ""},
		{Name: "subscription_end", Type: field.TypeInt64, Default: 0},
		{Name: "created_at", Type: field.TypeInt64},
	}
	// UsersTable holds the schema information for the "users" table.
	UsersTable = &schema.Table{
		Name:       "users",
		Columns:    UsersColumns,
		PrimaryKey: []*schema.Column{UsersColumns[0]},
	}

	// MainCategoriesColumns holds the columns for the "main_categories" table.
	MainCategoriesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "name", Type: field.TypeString, Unique: true},
	}
	// MainCategoriesTable holds the schema information for the "main_categories" table.
	MainCategoriesTable = &schema.Table{
		Name:       "main_categories",
		Columns:    MainCategoriesColumns,
		PrimaryKey: []*schema.Column{MainCategoriesColumns[0]},
	}

	// SubcategoriesColumns holds the columns for the "subcategories" table.
	SubcategoriesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "name", Type: field.TypeString, Unique: true},
	}
	// SubcategoriesTable holds the schema information for the "subcategories" table.
	SubcategoriesTable = &schema.Table{
		Name:       "subcategories",
		Columns:    SubcategoriesColumns,
		PrimaryKey: []*schema.Column{SubcategoriesColumns[0]},
	}

	// MainSubLinksColumns holds the columns for the "main_sub_links" table.
	MainSubLinksColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "main_category_id", Type: field.TypeInt64},
		{Name: "subcategory_id", Type: field.TypeInt64},
	}
	// MainSubLinksTable holds the schema information for the "main_sub_links" table.
	MainSubLinksTable = &schema.Table{
		Name:       "main_sub_links",
		Columns:    MainSubLinksColumns,
		PrimaryKey: []*schema.Column{MainSubLinksColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "main_sub_links_main_categories_links",
				Columns:    []*schema.Column{MainSubLinksColumns[1]},
				RefColumns: []*schema.Column{MainCategoriesColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "main_sub_links_subcategories_links",
				Columns:    []*schema.Column{MainSubLinksColumns[2]},
				RefColumns: []*schema.Column{SubcategoriesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "mainsublink_main_category_id_subcategory_id",
				Unique:  true,
				Columns: []*schema.Column{MainSubLinksColumns[1], MainSubLinksColumns[2]},
			},
		},
	}

	// QuestionsColumns holds the columns for the "questions" table.
	QuestionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "correct_answer", Type: field.TypeString},
		{Name: "question_text", Type: field.TypeString, Size: 2147483647},
		{Name: "option_a", Type: field.TypeString},
		{Name: "option_b", Type: field.TypeString},
		{Name: "option_c", Type: field.TypeString},
		{Name: "option_d", Type: field.TypeString},
		{Name: "explanation", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "question_type", Type: field.TypeString},
		{Name: "image_path", Type: field.TypeString, Default: ""},
		{Name: "passage_name", Type: field.TypeString, Default: ""},
		{Name: "main_category_id", Type: field.TypeInt64},
	}
	// QuestionsTable holds the schema information for the "questions" table.
	QuestionsTable = &schema.Table{
		Name:       "questions",
		Columns:    QuestionsColumns,
		PrimaryKey: []*schema.Column{QuestionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "questions_main_categories_questions",
				Columns:    []*schema.Column{QuestionsColumns[11]},
				RefColumns: []*schema.Column{MainCategoriesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "question_question_type_main_category_id",
				Unique:  false,
				Columns: []*schema.Column{QuestionsColumns[8], QuestionsColumns[11]},
			},
		},
	}

	// QuizSessionsColumns holds the columns for the "quiz_sessions" table.
	QuizSessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "kind", Type: field.TypeString},
		{Name: "question_type", Type: field.TypeString, Default: ""},
		{Name: "category_kind", Type: field.TypeString, Default: ""},
		{Name: "category_id", Type: field.TypeInt64, Default: 0},
		{Name: "num_questions", Type: field.TypeInt},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "deadline", Type: field.TypeInt64},
		{Name: "score", Type: field.TypeInt, Default: 0},
		{Name: "answered", Type: field.TypeInt, Default: 0},
		{Name: "percentage", Type: field.TypeFloat64, Default: 0},
		{Name: "time_taken", Type: field.TypeFloat64, Default: 0},
		{Name: "pdf_path", Type: field.TypeString, Default: ""},
		{Name: "video_path", Type: field.TypeString, Default: ""},
		{Name: "finished_at", Type: field.TypeInt64, Default: 0},
		{Name: "user_id", Type: field.TypeInt64},
	}
	// QuizSessionsTable holds the schema information for the "quiz_sessions" table.
	QuizSessionsTable = &schema.Table{
		Name:       "quiz_sessions",
		Columns:    QuizSessionsColumns,
		PrimaryKey: []*schema.Column{QuizSessionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "quiz_sessions_users_sessions",
				Columns:    []*schema.Column{QuizSessionsColumns[15]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "quizsession_user_id_kind_created_at",
				Unique:  false,
				Columns: []*schema.Column{QuizSessionsColumns[15], QuizSessionsColumns[1], QuizSessionsColumns[6]},
			},
		},
	}

	// AnswersColumns holds the columns for the "answers" table.
	AnswersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_id", Type: field.TypeInt64},
		{Name: "user_answer", Type: field.TypeString},
		{Name: "is_correct", Type: field.TypeBool},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "session_id", Type: field.TypeInt64},
		{Name: "question_id", Type: field.TypeInt64},
	}
	// AnswersTable holds the schema information for the "answers" table.
	AnswersTable = &schema.Table{
		Name:       "answers",
		Columns:    AnswersColumns,
		PrimaryKey: []*schema.Column{AnswersColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "answers_quiz_sessions_answers",
				Columns:    []*schema.Column{AnswersColumns[5]},
				RefColumns: []*schema.Column{QuizSessionsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "answers_questions_answers",
				Columns:    []*schema.Column{AnswersColumns[6]},
				RefColumns: []*schema.Column{QuestionsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "answer_session_id",
				Unique:  false,
				Columns: []*schema.Column{AnswersColumns[5]},
			},
		},
	}

	// ChatMessagesColumns holds the columns for the "chat_messages" table.
	ChatMessagesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "role", Type: field.TypeString},
		{Name: "content", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "user_id", Type: field.TypeInt64},
	}
	// ChatMessagesTable holds the schema information for the "chat_messages" table.
	ChatMessagesTable = &schema.Table{
		Name:       "chat_messages",
		Columns:    ChatMessagesColumns,
		PrimaryKey: []*schema.Column{ChatMessagesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "chat_messages_users_chat",
				Columns:    []*schema.Column{ChatMessagesColumns[4]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "chatmessage_user_id",
				Unique:  false,
				Columns: []*schema.Column{ChatMessagesColumns[4]},
			},
		},
	}

	// LlmRequestEventsColumns holds the columns for the "llm_request_events" table.
	LlmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LlmRequestEventsTable holds the schema information for the "llm_request_events" table.
	LlmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    LlmRequestEventsColumns,
		PrimaryKey: []*schema.Column{LlmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "llmrequestevent_purpose",
				Unique:  false,
				Columns: []*schema.Column{LlmRequestEventsColumns[4]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		UsersTable,
		MainCategoriesTable,
		SubcategoriesTable,
		MainSubLinksTable,
		QuestionsTable,
		QuizSessionsTable,
		AnswersTable,
		ChatMessagesTable,
		LlmRequestEventsTable,
	}
)

func init() {
	MainSubLinksTable.ForeignKeys[0].RefTable = MainCategoriesTable
	MainSubLinksTable.ForeignKeys[1].RefTable = SubcategoriesTable
	QuestionsTable.ForeignKeys[0].RefTable = MainCategoriesTable
	QuizSessionsTable.ForeignKeys[0].RefTable = UsersTable
	AnswersTable.ForeignKeys[0].RefTable = QuizSessionsTable
	AnswersTable.ForeignKeys[1].RefTable = QuestionsTable
	ChatMessagesTable.ForeignKeys[0].RefTable = UsersTable
}
