package chat

// Markup names the choice menu the transport adapter should attach to a reply.
// Rendering (button layout, localization, wire format) is the adapter's job.
type Markup string

const (
	MarkupNone              Markup = "none"
	MarkupMainMenu          Markup = "main_menu"
	MarkupProfileMenu       Markup = "profile_menu"
	MarkupEditProfileFields Markup = "edit_profile_fields"
	MarkupClassMenu         Markup = "class_menu"
	MarkupClassManageMenu   Markup = "class_manage_menu"
	MarkupHomeworkMenu      Markup = "homework_menu"
	MarkupHomeworkEditMenu  Markup = "homework_edit_menu"
	MarkupYesNo             Markup = "yes_no"
)

// Reply is the directive returned for one incoming event. A zero Reply means
// the event was silently ignored.
type Reply struct {
	Text   string `json:"text"`
	Markup Markup `json:"markup"`
}

func (r Reply) IsZero() bool { return r.Text == "" && r.Markup == "" }

func reply(text string, markup Markup) Reply {
	return Reply{Text: text, Markup: markup}
}

func textReply(text string) Reply {
	return Reply{Text: text, Markup: MarkupNone}
}
