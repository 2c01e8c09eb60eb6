package httperr

import "errors"

// BusinessError é uma regra de negócio violada; o código vai para o cliente
// em error_code.
type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

// Message devolve o texto pt-BR do código.
func (e BusinessError) Message() string {
	if msg, ok := businessMessages[e.Code]; ok {
		return msg
	}
	return "Requisição inválida."
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

var businessMessages = map[string]string{
	"invalid_date_or_time":     "Data ou hora inválida.",
	"invalid_type":             "Tipo de atendimento inválido.",
	"too_soon":                 "Horário muito próximo ou no passado.",
	"professional_unavailable": "Profissional não está disponível para agendamentos.",
	"invalid_availability":     "Configuração de horários inválida.",
	"invalid_status":           "Status inválido.",
	"invalid_view":             "Visão de calendário inválida.",
	"payment_not_configured":   "Pagamentos não configurados.",
	"payment_already_approved": "Este agendamento já possui pagamento aprovado.",
	"storage_not_configured":   "Armazenamento de arquivos não configurado.",
	"invalid_file":             "Arquivo inválido.",
	"appointment_not_payable":  "Agendamento cancelado.",
	"payment_not_required":     "Este profissional não cobra pela sessão.",
	"invalid_name":             "Nome inválido.",
	"invalid_price":            "Valor da sessão inválido.",
	"invalid_payment_method":   "Forma de pagamento inválida.",
	"invalid_webhook_url":      "URL de webhook inválida.",
	"invalid_webhook_events":   "Eventos de webhook inválidos.",
}
