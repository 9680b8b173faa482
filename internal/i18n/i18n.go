package i18n

import (
	"fmt"
	"strings"

	"github.com/vale-cashback/api/internal/constants"

	"github.com/gin-gonic/gin"
)

// DefaultLocale 默认站点语言
const DefaultLocale = constants.LocalePtBR

// ResolveLocale 解析请求语言：优先 lang 参数，其次 Accept-Language 头
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if lang := normalizeLocale(c.Query("lang")); lang != "" {
		return lang
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		tag := part
		if idx := strings.Index(tag, ";"); idx >= 0 {
			tag = tag[:idx]
		}
		if lang := normalizeLocale(tag); lang != "" {
			return lang
		}
	}
	return DefaultLocale
}

// T 返回 key 对应的本地化文案，缺失时回退默认语言再回退 key 本身
func T(locale, key string) string {
	if table, ok := catalog[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 返回带参数的本地化文案
func Sprintf(locale, key string, args ...interface{}) string {
	msg := T(locale, key)
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

func normalizeLocale(raw string) string {
	tag := strings.TrimSpace(strings.ToLower(raw))
	if tag == "" {
		return ""
	}
	for _, supported := range constants.SupportedLocales {
		if tag == strings.ToLower(supported) {
			return supported
		}
	}
	// 仅语言前缀匹配，如 pt 匹配 pt-BR
	prefix := tag
	if idx := strings.Index(prefix, "-"); idx >= 0 {
		prefix = prefix[:idx]
	}
	for _, supported := range constants.SupportedLocales {
		if prefix == strings.SplitN(strings.ToLower(supported), "-", 2)[0] {
			return supported
		}
	}
	return ""
}

var catalog = map[string]map[string]string{
	constants.LocaleEnUS: {
		"error.bad_request":            "Invalid request",
		"error.validation_failed":      "Request validation failed",
		"error.unauthorized":           "Authentication required",
		"error.forbidden":              "Access denied",
		"error.not_found":              "Resource not found",
		"error.internal_error":         "Internal server error",
		"error.auth_header_missing":    "Authorization header is missing",
		"error.auth_header_invalid":    "Authorization header is malformed",
		"error.token_invalid":          "Token is invalid or expired",
		"error.token_revoked":          "Token has been revoked",
		"error.jwt_secret_missing":     "Authentication is not configured",
		"error.rate_limited":           "Too many attempts, try again later",
		"error.captcha_required":       "Captcha is required",
		"error.captcha_invalid":        "Captcha verification failed",
		"error.invalid_credentials":    "Invalid email or password",
		"error.user_disabled":          "Account is disabled",
		"error.email_taken":            "Email is already registered",
		"error.referral_code_invalid":  "Referral code is invalid",
		"error.password_policy":        "Password does not meet the security policy",
		"error.user_not_found":         "User not found",
		"error.merchant_not_found":     "Merchant not found",
		"error.merchant_not_approved":  "Merchant is awaiting approval",
		"error.insufficient_balance":   "Insufficient cashback balance",
		"error.invalid_amount":         "Amount must be greater than zero",
		"error.duplicate_reference":    "Transaction reference already processed",
		"error.transaction_not_found":  "Transaction not found",
		"error.qr_not_found":           "Payment code not found",
		"error.qr_expired":             "Payment code has expired",
		"error.qr_already_used":        "Payment code has already been used",
		"error.qr_owner_conflict":      "Payment code belongs to another merchant",
		"error.withdrawal_not_found":   "Withdrawal request not found",
		"error.withdrawal_not_pending": "Withdrawal request is no longer pending",
		"error.withdrawal_terminal":    "Withdrawal request has reached a final state",
		"error.transfer_self":          "Cannot transfer to your own account",
		"error.recipient_not_found":    "Recipient not found",
		"error.notification_not_found": "Notification not found",
		"error.setting_invalid":        "Setting payload is invalid",
		"error.commission_rate_invalid": "Commission rates are invalid",

		"error.user_id_invalid":      "User identity is missing",
		"error.user_id_type_invalid": "User identity is malformed",
		"error.role_invalid":         "Role is not allowed",
		"error.status_invalid":       "Status is not allowed",
		"error.locale_invalid":       "Language is not supported",

		"error.login_too_many":          "Too many login attempts, try again in %d seconds",
		"error.rate_limit_unavailable":  "Rate limiter is unavailable",
		"error.captcha_unavailable":     "Captcha is unavailable",
		"error.captcha_config_invalid":  "Captcha configuration is invalid",
		"error.captcha_generate_failed": "Failed to generate captcha",
		"error.captcha_verify_failed":   "Failed to verify captcha",

		"error.password_min_length":     "Password must be at least %d characters long",
		"error.password_require_upper":  "Password must contain an uppercase letter",
		"error.password_require_lower":  "Password must contain a lowercase letter",
		"error.password_require_number": "Password must contain a number",
		"error.old_password_invalid":    "Current password is incorrect",
		"error.merchant_profile_required": "Merchant profile requires a store name",

		"error.qr_self_payment":          "Merchants cannot pay their own codes",
		"error.withdrawal_method_invalid": "Withdrawal method is not supported",
		"error.withdrawal_below_minimum":  "Withdrawal amount is below the minimum",
		"error.withdrawal_action_invalid": "Review action is not supported",
		"error.commission_config_invalid": "Failed to load commission configuration",
		"error.settlement_failed":         "Failed to settle the transaction",

		"error.register_failed":              "Registration failed",
		"error.login_failed":                 "Login failed",
		"error.logout_failed":                "Logout failed",
		"error.change_password_failed":       "Failed to change password",
		"error.profile_fetch_failed":         "Failed to load profile",
		"error.profile_update_failed":        "Failed to update profile",
		"error.users_fetch_failed":           "Failed to load users",
		"error.user_update_failed":           "Failed to update user",
		"error.merchants_fetch_failed":       "Failed to load merchants",
		"error.merchant_approve_failed":      "Failed to approve merchant",
		"error.dashboard_fetch_failed":       "Failed to load dashboard summary",
		"error.balance_fetch_failed":         "Failed to load balance",
		"error.balance_entries_fetch_failed": "Failed to load balance entries",
		"error.balance_adjust_failed":        "Failed to adjust balance",
		"error.transactions_fetch_failed":    "Failed to load transactions",
		"error.transfer_failed":              "Transfer failed",
		"error.transfers_fetch_failed":       "Failed to load transfers",
		"error.qr_generate_failed":           "Failed to generate payment code",
		"error.qr_fetch_failed":              "Failed to load payment codes",
		"error.qr_pay_failed":                "Failed to pay with this code",
		"error.withdrawal_apply_failed":      "Failed to submit withdrawal request",
		"error.withdrawal_review_failed":     "Failed to review withdrawal request",
		"error.withdrawal_cancel_failed":     "Failed to cancel withdrawal request",
		"error.withdrawals_fetch_failed":     "Failed to load withdrawal requests",
		"error.referrals_fetch_failed":       "Failed to load referrals",
		"error.notifications_fetch_failed":   "Failed to load notifications",
		"error.notification_mark_failed":     "Failed to mark notification",
		"error.login_logs_fetch_failed":      "Failed to load login history",
		"error.setting_fetch_failed":         "Failed to load settings",
		"error.setting_update_failed":        "Failed to update settings",
	},
	constants.LocalePtBR: {
		"error.bad_request":            "Requisição inválida",
		"error.validation_failed":      "Falha na validação da requisição",
		"error.unauthorized":           "Autenticação necessária",
		"error.forbidden":              "Acesso negado",
		"error.not_found":              "Recurso não encontrado",
		"error.internal_error":         "Erro interno do servidor",
		"error.auth_header_missing":    "Cabeçalho de autorização ausente",
		"error.auth_header_invalid":    "Cabeçalho de autorização malformado",
		"error.token_invalid":          "Token inválido ou expirado",
		"error.token_revoked":          "Token foi revogado",
		"error.jwt_secret_missing":     "Autenticação não configurada",
		"error.rate_limited":           "Muitas tentativas, tente novamente mais tarde",
		"error.captcha_required":       "Captcha obrigatório",
		"error.captcha_invalid":        "Falha na verificação do captcha",
		"error.invalid_credentials":    "E-mail ou senha inválidos",
		"error.user_disabled":          "Conta desativada",
		"error.email_taken":            "E-mail já cadastrado",
		"error.referral_code_invalid":  "Código de indicação inválido",
		"error.password_policy":        "A senha não atende à política de segurança",
		"error.user_not_found":         "Usuário não encontrado",
		"error.merchant_not_found":     "Lojista não encontrado",
		"error.merchant_not_approved":  "Lojista aguardando aprovação",
		"error.insufficient_balance":   "Saldo de cashback insuficiente",
		"error.invalid_amount":         "O valor deve ser maior que zero",
		"error.duplicate_reference":    "Referência de transação já processada",
		"error.transaction_not_found":  "Transação não encontrada",
		"error.qr_not_found":           "Código de pagamento não encontrado",
		"error.qr_expired":             "Código de pagamento expirado",
		"error.qr_already_used":        "Código de pagamento já utilizado",
		"error.qr_owner_conflict":      "Código de pagamento pertence a outro lojista",
		"error.withdrawal_not_found":   "Solicitação de saque não encontrada",
		"error.withdrawal_not_pending": "Solicitação de saque não está mais pendente",
		"error.withdrawal_terminal":    "Solicitação de saque já atingiu estado final",
		"error.transfer_self":          "Não é possível transferir para a própria conta",
		"error.recipient_not_found":    "Destinatário não encontrado",
		"error.notification_not_found": "Notificação não encontrada",
		"error.setting_invalid":        "Conteúdo da configuração inválido",
		"error.commission_rate_invalid": "Taxas de comissão inválidas",

		"error.user_id_invalid":      "Identidade do usuário ausente",
		"error.user_id_type_invalid": "Identidade do usuário malformada",
		"error.role_invalid":         "Papel não permitido",
		"error.status_invalid":       "Status não permitido",
		"error.locale_invalid":       "Idioma não suportado",

		"error.login_too_many":          "Muitas tentativas de login, tente novamente em %d segundos",
		"error.rate_limit_unavailable":  "Limitador de requisições indisponível",
		"error.captcha_unavailable":     "Captcha indisponível",
		"error.captcha_config_invalid":  "Configuração do captcha inválida",
		"error.captcha_generate_failed": "Falha ao gerar captcha",
		"error.captcha_verify_failed":   "Falha ao verificar captcha",

		"error.password_min_length":     "A senha deve ter pelo menos %d caracteres",
		"error.password_require_upper":  "A senha deve conter uma letra maiúscula",
		"error.password_require_lower":  "A senha deve conter uma letra minúscula",
		"error.password_require_number": "A senha deve conter um número",
		"error.old_password_invalid":    "Senha atual incorreta",
		"error.merchant_profile_required": "O cadastro de lojista exige o nome da loja",

		"error.qr_self_payment":          "Lojistas não podem pagar os próprios códigos",
		"error.withdrawal_method_invalid": "Método de saque não suportado",
		"error.withdrawal_below_minimum":  "Valor do saque abaixo do mínimo",
		"error.withdrawal_action_invalid": "Ação de revisão não suportada",
		"error.commission_config_invalid": "Falha ao carregar configuração de comissões",
		"error.settlement_failed":         "Falha ao liquidar a transação",

		"error.register_failed":              "Falha no cadastro",
		"error.login_failed":                 "Falha no login",
		"error.logout_failed":                "Falha ao sair",
		"error.change_password_failed":       "Falha ao alterar a senha",
		"error.profile_fetch_failed":         "Falha ao carregar o perfil",
		"error.profile_update_failed":        "Falha ao atualizar o perfil",
		"error.users_fetch_failed":           "Falha ao carregar usuários",
		"error.user_update_failed":           "Falha ao atualizar usuário",
		"error.merchants_fetch_failed":       "Falha ao carregar lojistas",
		"error.merchant_approve_failed":      "Falha ao aprovar lojista",
		"error.dashboard_fetch_failed":       "Falha ao carregar o painel",
		"error.balance_fetch_failed":         "Falha ao carregar o saldo",
		"error.balance_entries_fetch_failed": "Falha ao carregar o extrato",
		"error.balance_adjust_failed":        "Falha ao ajustar o saldo",
		"error.transactions_fetch_failed":    "Falha ao carregar transações",
		"error.transfer_failed":              "Falha na transferência",
		"error.transfers_fetch_failed":       "Falha ao carregar transferências",
		"error.qr_generate_failed":           "Falha ao gerar código de pagamento",
		"error.qr_fetch_failed":              "Falha ao carregar códigos de pagamento",
		"error.qr_pay_failed":                "Falha ao pagar com este código",
		"error.withdrawal_apply_failed":      "Falha ao solicitar o saque",
		"error.withdrawal_review_failed":     "Falha ao revisar a solicitação de saque",
		"error.withdrawal_cancel_failed":     "Falha ao cancelar a solicitação de saque",
		"error.withdrawals_fetch_failed":     "Falha ao carregar solicitações de saque",
		"error.referrals_fetch_failed":       "Falha ao carregar indicações",
		"error.notifications_fetch_failed":   "Falha ao carregar notificações",
		"error.notification_mark_failed":     "Falha ao marcar notificação",
		"error.login_logs_fetch_failed":      "Falha ao carregar histórico de login",
		"error.setting_fetch_failed":         "Falha ao carregar configurações",
		"error.setting_update_failed":        "Falha ao atualizar configurações",
	},
}
