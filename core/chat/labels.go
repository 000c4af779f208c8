package chat

// Command labels matched by the router in the default state. These are the
// adapter-facing contract: menu buttons must send exactly these strings.
const (
	CmdStart = "/start"

	// LabelBack is the global escape hatch: it aborts any active flow.
	LabelBack = "Back"

	CmdMyProfile   = "My Profile"
	CmdEditProfile = "Edit Profile"

	CmdMyHomework     = "My Homework"
	CmdAddPersonalHW  = "Add Personal Homework"

	CmdClass       = "Class"
	CmdClassInfo   = "Class Info"
	CmdJoinClass   = "Join Class"
	CmdLeaveClass  = "Leave Class"
	CmdManageClass = "Manage Class"
	CmdCreateClass = "Create Class"

	CmdClassHomework   = "Class Homework"
	CmdAllSubjects     = "All Subjects"
	CmdSpecificSubject = "Specific Subject"
	CmdEditHomework    = "Edit Homework"

	CmdEditInformation = "Edit Information"
	CmdJoinRequests    = "Join Requests"
	CmdClassMembers    = "Class Members"
	CmdAssignAssistant = "Assign Assistant"
)

// Edit-profile field labels.
const (
	LabelBirthDate      = "Birth Date"
	LabelPhone          = "Phone"
	LabelEmail          = "Email"
	LabelAdditionalInfo = "Additional Info"
)

// Homework edit mode labels.
const (
	LabelChooseFromList = "Choose From List"
	LabelWriteNew       = "Write New"
)
