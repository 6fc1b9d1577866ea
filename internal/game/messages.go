package game

// Form error messages.
const (
	MsgNoUsername           = "Enter a username."
	MsgUsernameTaken        = "Username taken."
	MsgUsernameEndsInDigit  = "Username must not end in a digit."
	MsgUsernameDoesNotExist = "Username does not exist."
	MsgNoPassword           = "Enter a password."
	MsgNoConfirm            = "Confirm your password."
	MsgConfirmDoesNotMatch  = "Does not match."
	MsgIncorrectPassword    = "Wrong password."
	MsgNotAuthorized        = "You do not have access to this page."
	MsgTooManyAttempts      = "Too many login attempts. Try again shortly."

	MsgNoTitle           = "Enter a title."
	MsgTitleTaken        = "Title taken."
	MsgNoSlug            = "Enter a url slug."
	MsgSlugTaken         = "Slug taken."
	MsgBadSlug           = "Use lowercase letters, digits and dashes."
	MsgNoRoundLength     = "Enter a word round length."
	MsgNoInterval        = "Enter a slicing interval."
	MsgNoMinSubmissions  = "Enter a minimum number of blind submissions."
	MsgNoSubmissionValue = "Enter a blind submission value."
	MsgNoHalfLife        = "Enter a decay half-life."
	MsgNoCapital         = "Enter a seed capital quantity."
	MsgMustBeInt         = "Must be an integer."
	MsgMustBePositive    = "Must be greater than zero."
)
