package controllers

// Тексты ответов API для пользователя.
const (
	msgBadRequest     = "So'rov formati noto'g'ri"
	msgBadFilter      = "Filtr qiymati noto'g'ri"
	msgBadID          = "Identifikator noto'g'ri"
	msgValidation     = "Formadagi xatolarni tuzating"
	msgNotFound       = "Yozuv topilmadi"
	msgConflict       = "Bunday yozuv allaqachon mavjud"
	msgReferenced     = "Yozuv boshqa ma'lumotlarda ishlatilmoqda, o'chirib bo'lmaydi"
	msgForbidden      = "Bu amal uchun ruxsat yo'q"
	msgInternal       = "Ichki server xatosi"
	msgNoIDs          = "O'chirish uchun yozuv tanlanmagan"
	msgSelfDelete     = "O'zingizni o'chira olmaysiz"
	msgBadCredentials = "Login yoki parol noto'g'ri"
	msgInactive       = "Foydalanuvchi bloklangan"
	msgExportFormat   = "Eksport formati noto'g'ri (doc yoki xls)"
	msgProfileUpdated = "Profil yangilandi"

	msgEmptyTitle       = "Ma'lumot topilmadi"
	msgEmptyDescription = "Filtrlarni o'zgartiring yoki yangi yozuv qo'shing"
)

// messages - тексты успешных мутаций ресурса.
type messages struct {
	Created     string
	Updated     string
	Deleted     string
	BulkDeleted string
}

func resourceMessages(subject string) messages {
	return messages{
		Created:     subject + " muvaffaqiyatli qo'shildi",
		Updated:     subject + " muvaffaqiyatli yangilandi",
		Deleted:     subject + " muvaffaqiyatli o'chirildi",
		BulkDeleted: "Tanlangan yozuvlar muvaffaqiyatli o'chirildi",
	}
}
