package email

import "fmt"

// Message is a rendered email ready for delivery.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// VerificationMessage renders the account verification email.
func VerificationMessage(name, frontendURL, token string) Message {
	link := fmt.Sprintf("%s/verificar-email/%s", frontendURL, token)
	return Message{
		Subject: "Confirme seu cadastro",
		HTML: fmt.Sprintf(`<p>Olá, %s!</p>
<p>Seu cadastro está quase pronto. Confirme seu email clicando no link abaixo:</p>
<p><a href=%q>Confirmar email</a></p>
<p>O link expira em 24 horas. Se você não se cadastrou, ignore esta mensagem.</p>`, name, link),
		Text: fmt.Sprintf("Olá, %s!\n\nConfirme seu email acessando: %s\n\nO link expira em 24 horas.", name, link),
	}
}

// WelcomeMessage renders the post-verification welcome email.
func WelcomeMessage(name, frontendURL string) Message {
	return Message{
		Subject: "Bem-vindo à Quadra Imóveis",
		HTML: fmt.Sprintf(`<p>Olá, %s!</p>
<p>Sua conta foi verificada com sucesso. Agora você pode agendar visitas e acompanhar seus imóveis favoritos.</p>
<p><a href=%q>Acessar a plataforma</a></p>`, name, frontendURL),
		Text: fmt.Sprintf("Olá, %s!\n\nSua conta foi verificada com sucesso. Acesse: %s", name, frontendURL),
	}
}

// PasswordResetMessage renders the password recovery email.
func PasswordResetMessage(name, frontendURL, token string) Message {
	link := fmt.Sprintf("%s/redefinir-senha/%s", frontendURL, token)
	return Message{
		Subject: "Recuperação de senha",
		HTML: fmt.Sprintf(`<p>Olá, %s!</p>
<p>Recebemos um pedido para redefinir sua senha. Use o link abaixo:</p>
<p><a href=%q>Redefinir senha</a></p>
<p>O link expira em 1 hora. Se você não pediu a redefinição, ignore esta mensagem.</p>`, name, link),
		Text: fmt.Sprintf("Olá, %s!\n\nRedefina sua senha acessando: %s\n\nO link expira em 1 hora.", name, link),
	}
}
