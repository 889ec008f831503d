package main

// Numeric reply codes. Rendered as three-digit decimal over the wire (they
// are already zero-padded string literals, so NewRawMessage needs no
// formatting step for them). Names are modelled on RFC 2812's RPL_/ERR_
// names so logs/tests read the same as any other IRC server's.
const (
	ReplyWelcome         = "001"
	ReplyYoureOper       = "381"
	ReplyNoMOTD          = "422"
	ReplyMOTDStart       = "375"
	ReplyMOTD            = "372"
	ReplyEndOfMOTD       = "376"
	ReplyChannelModeIs   = "324"
	ReplyNoTopic         = "331"
	ReplyTopic           = "332"
	ReplyWhoReply        = "352"
	ReplyEndOfWho        = "315"
	ReplyNameReply       = "353"
	ReplyEndOfNames      = "366"
	ReplyBanList         = "367"
	ReplyEndOfBanList    = "368"
	ReplyInviteList      = "346"
	ReplyEndOfInviteList = "347"
	ReplyExceptList      = "348"
	ReplyEndOfExceptList = "349"

	ErrNoSuchNick       = "401"
	ErrNoSuchChannel    = "403"
	ErrCannotSendToChan = "404"
	ErrNoOrigin         = "409"
	ErrNoRecipient      = "411"
	ErrNoTextToSend     = "412"
	ErrUnknownCommand   = "421"
	ErrNoNicknameGiven  = "431"
	ErrErroneusNickname = "432"
	ErrNicknameInUse    = "433"
	ErrNotOnChannel     = "442"
	ErrNotRegistered    = "451"
	ErrNeedMoreParams   = "461"
	ErrAlreadyRegistred = "462"
	ErrPasswdMismatch   = "464"
	ErrChannelIsFull    = "471"
	ErrUnknownMode      = "472"
	ErrInviteOnlyChan   = "473"
	ErrBannedFromChan   = "474"
	ErrBadChannelKey    = "475"
	ErrNoPrivileges     = "481"
	ErrChanOPrivsNeeded = "482"
)

// Namesake commands this daemon understands. An unknown command from a
// registered client is answered with ErrUnknownCommand (dispatchCommand in
// handlers.go); before registration it gets ErrNotRegistered.
const (
	cmdNick    = "NICK"
	cmdUser    = "USER"
	cmdJoin    = "JOIN"
	cmdPart    = "PART"
	cmdQuit    = "QUIT"
	cmdPrivmsg = "PRIVMSG"
	cmdNotice  = "NOTICE"
	cmdMode    = "MODE"
	cmdTopic   = "TOPIC"
	cmdNames   = "NAMES"
	cmdWho     = "WHO"
	cmdPing    = "PING"
	cmdPong    = "PONG"
	cmdCap     = "CAP"
	cmdOper    = "OPER"
)
