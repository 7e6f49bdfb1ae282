package intake

import (
	"fmt"

	"github.com/m3rciful/intakebot/core/telegram/format"
)

// TriggerPhrase starts a new submission from any state. It is also the
// only button of the main keyboard.
const TriggerPhrase = "📝 Сделать пост"

// Choice tokens of the confirmation message.
const (
	TokenConfirm = "confirm_submit"
	TokenRestart = "restart_submit"
)

// User-facing texts.
const (
	textPhotoPrompt   = "📸 Отлично! Для начала, отправьте мне фотографию покупки"
	textPhotoFailed   = "⚠️ Не удалось получить фотографию. Попробуйте отправить её ещё раз."
	textServerPrompt  = "Теперь напишите название сервера."
	textCarPrompt     = "🚗 Сервер выбран! Какую машину вы купили?"
	textPricePrompt   = "💰 На какую сумму? (только число)"
	textPriceInvalid  = "Ошибка! Введите число."
	textConfirmButton = "✅ Все верно, отправить"
	textRestartButton = "❌ Заполнить заново"
	textSubmitted     = "✅ Спасибо! Ваша заявка отправлена на модерацию."
	textSubmitFailed  = "❌ Произошла ошибка. Пожалуйста, попробуйте позже."
	textRestarted     = "Хорошо, давайте начнем заново."
	textReady         = "Вы можете создать новый пост, нажав на кнопку '" + TriggerPhrase + "'."
	textCancelled     = "Операция отменена."
)

func greeting(u User) string {
	return fmt.Sprintf("Привет, %s! Нажмите кнопку '%s', чтобы отправить информацию о покупке.",
		format.Mention(u.ID, u.Name), TriggerPhrase)
}

func confirmationCaption(d Draft) string {
	return fmt.Sprintf("Пожалуйста, проверьте все ли верно:\n\n"+
		"🌐 Сервер: %s\n"+
		"🚗 Автомобиль: %s\n"+
		"💰 Цена покупки: %d", d.Server, d.Car, d.Price)
}

var confirmChoices = []Option{
	{Token: TokenConfirm, Label: textConfirmButton},
	{Token: TokenRestart, Label: textRestartButton},
}
