// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package locale

import (
	"github.com/samber/oops"
)

// Key names one entry of the message catalog.
type Key int

// Message keys. Validation keys come first, in the order rules are checked.
const (
	UsernameShort Key = iota
	PasswordShort
	PasswordLong
	UsernameLong
	UsernameChars
	PasswordChars
	UserRegistered
	UserNotRegistered
	Sorry
	LoginWrong

	TitleHome
	TitleLogin
	TitleRegister
	TitleProfile
	TitleLeaderboard
	TitleQuestion
	LabelUsername
	LabelPassword
	LabelLanguage
	LabelAnswer
	LabelTotal
	ActionLogin
	ActionRegister
	ActionLogout
	ActionSubmit
	ActionPlay
	TextWelcome

	keyCount
)

var keyNames = [keyCount]string{
	UsernameShort:     "username_short",
	PasswordShort:     "password_short",
	PasswordLong:      "password_long",
	UsernameLong:      "username_long",
	UsernameChars:     "username_cont",
	PasswordChars:     "password_cont",
	UserRegistered:    "user_registered",
	UserNotRegistered: "user_not_registered",
	Sorry:             "sorry",
	LoginWrong:        "login_wrong",
	TitleHome:         "title_home",
	TitleLogin:        "title_login",
	TitleRegister:     "title_register",
	TitleProfile:      "title_profile",
	TitleLeaderboard:  "title_leaderboard",
	TitleQuestion:     "title_question",
	LabelUsername:     "label_username",
	LabelPassword:     "label_password",
	LabelLanguage:     "label_language",
	LabelAnswer:       "label_answer",
	LabelTotal:        "label_total",
	ActionLogin:       "action_login",
	ActionRegister:    "action_register",
	ActionLogout:      "action_logout",
	ActionSubmit:      "action_submit",
	ActionPlay:        "action_play",
	TextWelcome:       "text_welcome",
}

// catalog is indexed by key, then by locale id. Its shape is fixed at
// compile time; CheckCatalog verifies that no slot was left empty.
var catalog = [keyCount][Count]string{
	UsernameShort: {
		"Username should be longer than 5 symbols",
		"Юзернейм должен быть длинее 5-и символов",
	},
	PasswordShort: {
		"Password should be longer than 8 symbols",
		"Пароль должен быть длинее 8-и символов",
	},
	PasswordLong: {
		"Password should be shorter than 30 symbols",
		"Пароль должен быть короче 30-и символов",
	},
	UsernameLong: {
		"Username should be shorter than 15 symbols",
		"Юзернейм должен быть короче 15-и символов",
	},
	UsernameChars: {
		"Username should consist only from alphanumeric symbols",
		"Юзернейм должен состоять лишь из букв и чисел",
	},
	PasswordChars: {
		"Password should consist only from alphanumeric symbols + !@#$%^&*()_+=-?><",
		"Пароль должен состоять лишь из букв и чисел + !@#$%^&*()_+=-?><",
	},
	UserRegistered: {
		"Username is already registered",
		"Юзернейм уже зарегистрирован",
	},
	UserNotRegistered: {
		"Username is not registered",
		"Юзернейм не зарегистрирован",
	},
	Sorry: {
		"Sorry, try again later",
		"Извините, попробуйте позже",
	},
	// The English text keeps its historical typo; clients match on it.
	LoginWrong: {
		"Wrong username of password",
		"Неверный логин или пароль",
	},
	TitleHome:        {"Quiz", "Викторина"},
	TitleLogin:       {"Log in", "Вход"},
	TitleRegister:    {"Sign up", "Регистрация"},
	TitleProfile:     {"Profile", "Профиль"},
	TitleLeaderboard: {"Top players", "Лучшие игроки"},
	TitleQuestion:    {"Question", "Вопрос"},
	LabelUsername:    {"Username", "Юзернейм"},
	LabelPassword:    {"Password", "Пароль"},
	LabelLanguage:    {"Language", "Язык"},
	LabelAnswer:      {"Answer", "Ответ"},
	LabelTotal:       {"Total", "Всего"},
	ActionLogin:      {"Log in", "Войти"},
	ActionRegister:   {"Sign up", "Зарегистрироваться"},
	ActionLogout:     {"Log out", "Выйти"},
	ActionSubmit:     {"Submit", "Отправить"},
	ActionPlay:       {"Answer a question", "Ответить на вопрос"},
	TextWelcome: {
		"Answer questions on algebra, chemistry, geometry and physics to climb the leaderboard.",
		"Отвечайте на вопросы по алгебре, химии, геометрии и физике, чтобы подняться в рейтинге.",
	},
}

// String returns the stable catalog name of the key.
func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return "unknown"
	}
	return keyNames[k]
}

// Text returns the message for key in the given locale.
// An unsupported id falls back to Default; an unknown key yields "".
func Text(k Key, id ID) string {
	if k < 0 || k >= keyCount {
		return ""
	}
	if !id.Valid() {
		id = Default
	}
	return catalog[k][id]
}

// Lookup returns the message with the catalog name in locale id, or "" when
// no key has that name.
func Lookup(name string, id ID) string {
	for k := Key(0); k < keyCount; k++ {
		if keyNames[k] == name {
			return Text(k, id)
		}
	}
	return ""
}

// Texts localizes keys in order.
func Texts(keys []Key, id ID) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, Text(k, id))
	}
	return out
}

// CheckCatalog returns an error naming the first key that lacks a
// translation for some locale.
func CheckCatalog() error {
	for k := Key(0); k < keyCount; k++ {
		if keyNames[k] == "" {
			return oops.Code("LOCALE_CATALOG_INCOMPLETE").
				With("key_index", int(k)).
				Errorf("message key %d has no name", k)
		}
		for _, id := range All() {
			if catalog[k][id] == "" {
				return oops.Code("LOCALE_CATALOG_INCOMPLETE").
					With("key", keyNames[k]).
					With("locale", id.Name()).
					Errorf("message %q has no %s translation", keyNames[k], id.Name())
			}
		}
	}
	return nil
}
