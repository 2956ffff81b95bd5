package loginlang

var de = Definition{
	Code:  De,
	Label: "Deutsch",
	Strings: Strings{
		Login:                 "Anmelden",
		Signup:                "Registrieren",
		Logout:                "Abmelden",
		LanguageSelectorLabel: "Sprache der Anmeldeseite",
	},
	CreditUsage: &CreditUsageCopy{
		Title:                 "Guthabenverbrauch",
		Subtitle:              "Verfügbare Credits und Meilen Ihres Kontos.",
		AvailableCreditsLabel: "Verfügbare Credits",
		AvailableMileageLabel: "Verfügbare Meilen",
		CreditsUnitLabel:      "Credits",
		MileageUnitLabel:      "P",
		LastUpdatedLabel:      "Zuletzt aktualisiert",
		RefreshCTA:            "Aktualisieren",
		EmptyStateTitle:       "Keine Daten vorhanden.",
	},
}

var en = Definition{
	Code:  En,
	Label: "English",
	Strings: Strings{
		Login:                 "Log in",
		Signup:                "Sign up",
		Logout:                "Log out",
		LanguageSelectorLabel: "Login page language",
	},
	CreditUsage: &CreditUsageCopy{
		Title:                 "Credit Usage",
		Subtitle:              "Credits and mileage available on your account.",
		AvailableCreditsLabel: "Available credits",
		AvailableMileageLabel: "Available mileage",
		CreditsUnitLabel:      "credits",
		MileageUnitLabel:      "P",
		LastUpdatedLabel:      "Last updated",
		RefreshCTA:            "Refresh",
		EmptyStateTitle:       "No data yet.",
	},
}

var es = Definition{
	Code:  Es,
	Label: "Español",
	Strings: Strings{
		Login:                 "Iniciar sesión",
		Signup:                "Registrarse",
		Logout:                "Cerrar sesión",
		LanguageSelectorLabel: "Idioma de la página de inicio de sesión",
	},
}

var fr = Definition{
	Code:  Fr,
	Label: "Français",
	Strings: Strings{
		Login:                 "Se connecter",
		Signup:                "S'inscrire",
		Logout:                "Se déconnecter",
		LanguageSelectorLabel: "Langue de la page de connexion",
	},
}

var id = Definition{
	Code:  ID,
	Label: "Bahasa Indonesia",
	Strings: Strings{
		Login:                 "Masuk",
		Signup:                "Daftar",
		Logout:                "Keluar",
		LanguageSelectorLabel: "Bahasa halaman masuk",
	},
}

var it = Definition{
	Code:  It,
	Label: "Italiano",
	Strings: Strings{
		Login:                 "Accedi",
		Signup:                "Registrati",
		Logout:                "Esci",
		LanguageSelectorLabel: "Lingua della pagina di accesso",
	},
}

var ja = Definition{
	Code:  Ja,
	Label: "日本語",
	Strings: Strings{
		Login:                 "ログイン",
		Signup:                "新規登録",
		Logout:                "ログアウト",
		LanguageSelectorLabel: "ログインページの言語",
	},
	CreditUsage: &CreditUsageCopy{
		Title:                 "クレジット使用状況",
		Subtitle:              "アカウントで利用可能なクレジットとマイレージ。",
		AvailableCreditsLabel: "利用可能クレジット",
		AvailableMileageLabel: "利用可能マイレージ",
		CreditsUnitLabel:      "クレジット",
		MileageUnitLabel:      "P",
		LastUpdatedLabel:      "最終更新",
		RefreshCTA:            "更新",
		EmptyStateTitle:       "データがありません。",
	},
}

var ko = Definition{
	Code:  Ko,
	Label: "한국어",
	Strings: Strings{
		Login:                 "로그인",
		Signup:                "회원가입",
		Logout:                "로그아웃",
		LanguageSelectorLabel: "로그인 페이지 언어",
	},
	CreditUsage: &CreditUsageCopy{
		Title:                 "크레딧 사용 현황",
		Subtitle:              "계정에서 사용할 수 있는 크레딧과 마일리지입니다.",
		AvailableCreditsLabel: "사용 가능한 크레딧",
		AvailableMileageLabel: "사용 가능한 마일리지",
		CreditsUnitLabel:      "크레딧",
		MileageUnitLabel:      "P",
		LastUpdatedLabel:      "마지막 업데이트",
		RefreshCTA:            "새로고침",
		EmptyStateTitle:       "데이터가 없습니다.",
	},
}

var ptBR = Definition{
	Code:  PtBR,
	Label: "Português (Brasil)",
	Strings: Strings{
		Login:                 "Entrar",
		Signup:                "Cadastrar-se",
		Logout:                "Sair",
		LanguageSelectorLabel: "Idioma da página de login",
	},
}

var zhCN = Definition{
	Code:  ZhCN,
	Label: "简体中文",
	Strings: Strings{
		Login:                 "登录",
		Signup:                "注册",
		Logout:                "退出登录",
		LanguageSelectorLabel: "登录页面语言",
	},
}

var zhTW = Definition{
	Code:  ZhTW,
	Label: "繁體中文",
	Strings: Strings{
		Login:                 "登入",
		Signup:                "註冊",
		Logout:                "登出",
		LanguageSelectorLabel: "登入頁面語言",
	},
}
