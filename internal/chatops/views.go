package chatops

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/dynoinc/respond/internal/incident"
)

// Input block ids double as action ids and as the keys of
// ViewSubmissionEvent.Fields.
const (
	FieldName     = "name"
	FieldType     = "type"
	FieldSeverity = "severity"
	FieldStatus   = "status"
	FieldSummary  = "summary"
	FieldComment  = "comment"
)

const (
	maxNameLength    = 80
	listIncidentsMax = 25
)

func plain(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, false, false)
}

func mrkdwn(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

func modal(callbackID, title, submit, privateMetadata string, blocks ...slack.Block) *slack.ModalViewRequest {
	v := &slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      callbackID,
		PrivateMetadata: privateMetadata,
		Title:           plain(title),
		Close:           plain("Cancel"),
		Blocks:          slack.Blocks{BlockSet: blocks},
	}
	if submit != "" {
		v.Submit = plain(submit)
	}
	return v
}

func textInput(field, label, initial string, multiline, optional bool) *slack.InputBlock {
	el := slack.NewPlainTextInputBlockElement(nil, field)
	el.Multiline = multiline
	el.InitialValue = initial
	if field == FieldName {
		el.MaxLength = maxNameLength
	}

	block := slack.NewInputBlock(field, plain(label), nil, el)
	block.Optional = optional
	return block
}

func staticSelect[T ~string](field, label string, values []T, initial T, optional bool) *slack.InputBlock {
	options := make([]*slack.OptionBlockObject, 0, len(values))
	var initialOption *slack.OptionBlockObject
	for _, v := range values {
		opt := slack.NewOptionBlockObject(string(v), plain(strings.ReplaceAll(string(v), "_", " ")), nil)
		options = append(options, opt)
		if v == initial {
			initialOption = opt
		}
	}

	el := slack.NewOptionsSelectBlockElement(slack.OptTypeStatic, plain("Select..."), field, options...)
	el.InitialOption = initialOption

	block := slack.NewInputBlock(field, plain(label), nil, el)
	block.Optional = optional
	return block
}

func userSelect(role incident.RoleType, initial string, optional bool) *slack.InputBlock {
	el := slack.NewOptionsSelectBlockElement(slack.OptTypeUser, plain("Select a user"), string(role))
	el.InitialUser = initial

	block := slack.NewInputBlock(string(role), plain(role.Title()), nil, el)
	block.Optional = optional
	return block
}

func createIncidentView() *slack.ModalViewRequest {
	return modal(CallbackIncidentCreate, "Declare incident", "Declare", "",
		textInput(FieldName, "Name", "", false, false),
		staticSelect(FieldSeverity, "Severity", incident.Severities, incident.SeverityTwo, false),
		staticSelect(FieldType, "Type", incident.Types, incident.TypeOther, true),
		textInput(FieldSummary, "Summary", "", true, true),
		userSelect(incident.RoleIncidentCommander, "", true),
	)
}

func summaryView(inc *incident.Incident) *slack.ModalViewRequest {
	return modal(CallbackSummary, "Update summary", "Save", inc.ID,
		incidentContext(inc),
		textInput(FieldSummary, "Summary", inc.Summary, true, false),
	)
}

func commentView(inc *incident.Incident) *slack.ModalViewRequest {
	return modal(CallbackComment, "Add comment", "Add", inc.ID,
		incidentContext(inc),
		textInput(FieldComment, "Comment", "", true, false),
	)
}

func statusView(inc *incident.Incident) *slack.ModalViewRequest {
	return modal(CallbackStatus, "Update status", "Save", inc.ID,
		incidentContext(inc),
		staticSelect(FieldStatus, "Status", incident.Statuses, inc.Status, false),
	)
}

func severityView(inc *incident.Incident) *slack.ModalViewRequest {
	return modal(CallbackSeverity, "Update severity", "Save", inc.ID,
		incidentContext(inc),
		staticSelect(FieldSeverity, "Severity", incident.Severities, inc.Severity, false),
	)
}

func rolesView(inc *incident.Incident) *slack.ModalViewRequest {
	blocks := []slack.Block{incidentContext(inc)}
	for _, role := range incident.RoleTypes {
		current, _ := inc.Role(role)
		blocks = append(blocks, userSelect(role, current.ID, true))
	}
	return modal(CallbackRoles, "Update roles", "Save", inc.ID, blocks...)
}

func incidentContext(inc *incident.Incident) *slack.ContextBlock {
	return slack.NewContextBlock("", mrkdwn(fmt.Sprintf("*%s* %s", inc.ID, inc.Name)))
}

func incidentListView(scope incident.Scope, incidents []incident.Incident, errMsg string) *slack.ModalViewRequest {
	blocks := []slack.Block{}
	switch {
	case errMsg != "":
		blocks = append(blocks, slack.NewSectionBlock(mrkdwn(":warning: "+errMsg), nil, nil))
	case len(incidents) == 0:
		blocks = append(blocks, slack.NewSectionBlock(mrkdwn(fmt.Sprintf("No %s incidents.", scopeLabel(scope))), nil, nil))
	}

	for _, inc := range incidents {
		blocks = append(blocks, slack.NewSectionBlock(mrkdwn(incidentLine(&inc)), nil, nil))
	}

	return modal(CallbackIncidentList, "Incidents", "", scope.String(), blocks...)
}

func scopeLabel(scope incident.Scope) string {
	if scope == incident.ScopeAll {
		return "recorded"
	}
	return scope.String()
}

func incidentLine(inc *incident.Incident) string {
	line := fmt.Sprintf("*%s* %s\n%s · %s", inc.ID, inc.Name, inc.Severity, inc.Status)
	if inc.ChannelID != "" {
		line += fmt.Sprintf(" · <#%s>", inc.ChannelID)
	}
	return line
}

func homeView(incidents []incident.Incident, errMsg string) slack.HomeTabViewRequest {
	blocks := []slack.Block{
		slack.NewHeaderBlock(plain("Incidents")),
		slack.NewActionBlock("home_actions",
			slack.NewButtonBlockElement(ActionCreateIncident, "", plain("Declare incident")).WithStyle(slack.StylePrimary),
		),
		slack.NewDividerBlock(),
	}

	switch {
	case errMsg != "":
		blocks = append(blocks, slack.NewSectionBlock(mrkdwn(":warning: "+errMsg), nil, nil))
	case len(incidents) == 0:
		blocks = append(blocks, slack.NewSectionBlock(mrkdwn("No open incidents. :tada:"), nil, nil))
	}
	for _, inc := range incidents {
		blocks = append(blocks, slack.NewSectionBlock(mrkdwn(incidentLine(&inc)), nil, nil))
	}

	return slack.HomeTabViewRequest{
		Type:   slack.VTHomeTab,
		Blocks: slack.Blocks{BlockSet: blocks},
	}
}

// incidentCard is the message posted to an incident channel, with a button per
// mutation the responders can make.
func incidentCard(inc *incident.Incident) []slack.Block {
	ic, _ := inc.Role(incident.RoleIncidentCommander)
	cl, _ := inc.Role(incident.RoleCommunicationsLead)

	summary := inc.Summary
	if summary == "" {
		summary = "_No summary yet_"
	}

	button := func(actionID, label string) slack.BlockElement {
		return slack.NewButtonBlockElement(actionID, inc.ID, plain(label))
	}

	return []slack.Block{
		slack.NewHeaderBlock(plain(fmt.Sprintf("%s: %s", inc.ID, inc.Name))),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			mrkdwn("*Status*\n" + string(inc.Status)),
			mrkdwn("*Severity*\n" + string(inc.Severity)),
			mrkdwn("*" + incident.RoleIncidentCommander.Title() + "*\n" + ic.Mention()),
			mrkdwn("*" + incident.RoleCommunicationsLead.Title() + "*\n" + cl.Mention()),
		}, nil),
		slack.NewSectionBlock(mrkdwn(summary), nil, nil),
		slack.NewActionBlock("incident_actions",
			button(ActionUpdateSummary, "Summary"),
			button(ActionAddComment, "Comment"),
			button(ActionUpdateStatus, "Status"),
			button(ActionUpdateSeverity, "Severity"),
			button(ActionUpdateRoles, "Roles"),
		),
	}
}

func updateMessage(inc *incident.Incident, entry incident.TimelineEntry) []slack.Block {
	return []slack.Block{
		slack.NewSectionBlock(mrkdwn(entry.Describe()), nil, nil),
		slack.NewContextBlock("", mrkdwn(fmt.Sprintf("%s · %s · %s", inc.ID, inc.Severity, inc.Status))),
	}
}

func announcement(inc *incident.Incident) []slack.Block {
	text := fmt.Sprintf(":rotating_light: %s declared *%s* (%s): %s", inc.CreatedBy.Mention(), inc.ID, inc.Severity, inc.Name)
	if inc.ChannelID != "" {
		text += fmt.Sprintf("\nJoin <#%s> to help.", inc.ChannelID)
	}
	return []slack.Block{slack.NewSectionBlock(mrkdwn(text), nil, nil)}
}
