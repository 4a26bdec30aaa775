// Package i18n holds the user-facing strings of the entry pipeline in each
// supported language.
package i18n

import (
	"strings"

	"github.com/Veraticus/pennywise/internal/llm"
	"github.com/Veraticus/pennywise/internal/model"
	"golang.org/x/text/language"
)

var supported = []language.Tag{
	language.English,
	language.TraditionalChinese,
}

var matcher = language.NewMatcher(supported)

type catalog struct {
	fields            map[string]string
	errors            map[llm.ErrorKind]string
	askAmount         string
	askCategory       string
	askFieldsPrefix   string
	fieldSeparator    string
	askGeneric        string
	nothingFound      string
	uncategorized     string
	useLocalizedNames bool
}

var catalogs = map[language.Tag]catalog{
	language.English: {
		askAmount:       "How much was it?",
		askCategory:     "Which category does this belong to?",
		askFieldsPrefix: "Please provide the following: ",
		fieldSeparator:  ", ",
		askGeneric:      "Could you tell me a bit more about this transaction?",
		nothingFound:    "I couldn't find a transaction in that. Try something like \"lunch 120\".",
		uncategorized:   "Uncategorized",
		fields: map[string]string{
			model.FieldAmount:     "amount",
			model.FieldCategoryID: "category",
			model.FieldDate:       "date",
		},
		errors: map[llm.ErrorKind]string{
			llm.KindNetwork:         "Couldn't reach the AI service. Check your connection and try again.",
			llm.KindRateLimit:       "Too many requests right now. Please wait a moment and try again.",
			llm.KindInvalidResponse: "The AI service returned something unexpected. Please try again.",
			llm.KindAPIKeyMissing:   "No AI API key is configured.",
			llm.KindParse:           "Couldn't understand that entry. Please rephrase it.",
			llm.KindUnknown:         "Something went wrong. Please try again.",
		},
	},
	language.TraditionalChinese: {
		askAmount:         "請問金額是多少？",
		askCategory:       "請問這筆要歸在哪個分類？",
		askFieldsPrefix:   "請補充以下資訊：",
		fieldSeparator:    "、",
		askGeneric:        "可以再多描述一下這筆交易嗎？",
		nothingFound:      "沒有找到任何交易，試試看「午餐 120」。",
		uncategorized:     "未分類",
		useLocalizedNames: true,
		fields: map[string]string{
			model.FieldAmount:     "金額",
			model.FieldCategoryID: "分類",
			model.FieldDate:       "日期",
		},
		errors: map[llm.ErrorKind]string{
			llm.KindNetwork:         "無法連線到 AI 服務，請檢查網路後再試一次。",
			llm.KindRateLimit:       "目前請求過多，請稍候再試。",
			llm.KindInvalidResponse: "AI 服務回傳了無法辨識的內容，請再試一次。",
			llm.KindAPIKeyMissing:   "尚未設定 AI 的 API 金鑰。",
			llm.KindParse:           "無法理解這筆輸入，請換個說法。",
			llm.KindUnknown:         "發生錯誤，請再試一次。",
		},
	},
}

// Localizer renders messages in one language.
type Localizer struct {
	tag language.Tag
	cat catalog
}

// New returns a Localizer for the best supported match of locale, such as
// "en", "zh-TW" or an Accept-Language header value. Unknown locales fall back
// to English.
func New(locale string) *Localizer {
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		tags = []language.Tag{language.English}
	}

	_, idx, _ := matcher.Match(tags...)
	tag := supported[idx]
	return &Localizer{tag: tag, cat: catalogs[tag]}
}

// Tag returns the resolved language.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// AskAmount asks the user for a missing amount.
func (l *Localizer) AskAmount() string { return l.cat.askAmount }

// AskCategory asks the user for a missing category.
func (l *Localizer) AskCategory() string { return l.cat.askCategory }

// AskGeneric asks the user for more detail.
func (l *Localizer) AskGeneric() string { return l.cat.askGeneric }

// NothingFound tells the user no transaction was recognized.
func (l *Localizer) NothingFound() string { return l.cat.nothingFound }

// Uncategorized is the label for transactions without a category.
func (l *Localizer) Uncategorized() string { return l.cat.uncategorized }

// AskFields asks for several missing fields in one prompt.
func (l *Localizer) AskFields(fields []string) string {
	labels := make([]string, len(fields))
	for i, f := range fields {
		labels[i] = l.FieldLabel(f)
	}
	return l.cat.askFieldsPrefix + strings.Join(labels, l.cat.fieldSeparator)
}

// FieldLabel translates a missing-field name. Unknown names are returned as is.
func (l *Localizer) FieldLabel(field string) string {
	if label, ok := l.cat.fields[field]; ok {
		return label
	}
	return field
}

// ErrorMessage returns the static message for an AI failure kind.
func (l *Localizer) ErrorMessage(kind llm.ErrorKind) string {
	switch kind {
	case llm.KindNetwork, llm.KindRateLimit, llm.KindInvalidResponse,
		llm.KindAPIKeyMissing, llm.KindParse, llm.KindUnknown:
		return l.cat.errors[kind]
	default:
		return l.cat.errors[llm.KindUnknown]
	}
}

// CategoryLabel returns the category name in this language.
func (l *Localizer) CategoryLabel(cat model.Category) string {
	if l.cat.useLocalizedNames {
		return cat.Label()
	}
	return cat.Name
}
