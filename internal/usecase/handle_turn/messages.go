package handle_turn

// Фиксированные реплики ассистента (pt-BR)
const (
	msgGreeting = "Olá, eu sou o Otinho, assistente de agendamento da OtorrinoMed.\n" +
		"Você tem preferência por algum médico?"

	msgAskDoctor = "Qual médico você prefere?"

	msgDoctorNotRecognized = "Não identifiquei o médico."

	msgAskDate = "Qual data você prefere?"

	msgDateNotRecognized = "Por favor, informe a data escolhida."

	msgAskTime = "Qual horário você prefere?"

	msgTimeNotRecognized = "Por favor, escolha um horário válido."

	msgTimeUnavailable = "Esse horário não está disponível."

	msgDoctorReferenceLost = "Perdi a referência do médico selecionado. Qual médico você prefere?"

	msgAskIdentify = "Perfeito! Agora, para verificar seu cadastro, me informe:\n" +
		"- Data de nascimento (yyyy-mm-dd)\n" +
		"- Telefone (somente números)"

	msgAskBirthDate = "Qual é sua data de nascimento? (yyyy-mm-dd ou dd/mm/aaaa)"

	msgAskPhone = "Qual é seu telefone com DDD? (somente números, ex.: 11987654321)"

	msgAskRegister = "Não localizei seu cadastro. Por favor, envie:\n" +
		"- Nome completo\n" +
		"- E-mail\n" +
		"- CPF (somente números)"

	msgAskFullname = "Qual é o seu nome completo?"

	msgAskEmail = "Qual é o seu e-mail?"

	msgAskCPF = "Qual é o seu CPF? (somente números)"

	msgAskSex = "Para finalizar, qual é o seu sexo? (responda 'M' para Masculino ou 'F' para Feminino)"

	msgRegisterFailed = "Não consegui concluir o cadastro agora. Podemos tentar novamente em instantes?"

	msgLoginFailed = "Cadastro criado, mas o login falhou. Tente novamente mais tarde, por favor."

	msgYesOrNo = "Por favor, responda com 'sim' ou 'não'."

	msgDeclinedAppointment = "Tudo bem! Se preferir, posso buscar outros horários. É só me dizer. 😊"

	msgNeedIdentity = "Estou quase lá! Preciso validar seus dados para prosseguir."

	msgAppointmentFailed = "Não consegui confirmar o agendamento agora. Pode tentar novamente em instantes?"

	msgDeclinedPrepay = "Perfeito! Seu horário está confirmado. Até breve e boa recuperação!"

	msgPaymentFailed = "Não consegui gerar o link de pagamento agora. Pode tentar novamente em instantes?"

	msgAgendaUnavailable = "Estou com dificuldade para consultar a agenda agora. " +
		"Pode tentar novamente em instantes?"
)
