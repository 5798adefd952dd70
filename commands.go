package remote

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// CommandName is the symbolic name of a wire protocol command.
type CommandName string

// Commands of the legacy JSON wire protocol.
const (
	CmdStatus                       CommandName = "status"
	CmdNewSession                   CommandName = "newSession"
	CmdGetCapabilities              CommandName = "getCapabilities"
	CmdQuit                         CommandName = "quit"
	CmdGetCurrentURL                CommandName = "getCurrentUrl"
	CmdGet                          CommandName = "get"
	CmdGoBack                       CommandName = "goBack"
	CmdGoForward                    CommandName = "goForward"
	CmdRefresh                      CommandName = "refresh"
	CmdGetTitle                     CommandName = "getTitle"
	CmdGetPageSource                CommandName = "getPageSource"
	CmdScreenshot                   CommandName = "screenshot"
	CmdIsBrowserVisible             CommandName = "isBrowserVisible"
	CmdSetBrowserVisible            CommandName = "setBrowserVisible"
	CmdGetCurrentWindowHandle       CommandName = "getCurrentWindowHandle"
	CmdGetWindowHandles             CommandName = "getWindowHandles"
	CmdSwitchToWindow               CommandName = "switchToWindow"
	CmdClose                        CommandName = "close"
	CmdSwitchToFrame                CommandName = "switchToFrame"
	CmdGetImplicitWait              CommandName = "getImplicitWait"
	CmdImplicitlyWait               CommandName = "implicitlyWait"
	CmdSetScriptTimeout             CommandName = "setScriptTimeout"
	CmdGetSpeed                     CommandName = "getSpeed"
	CmdSetSpeed                     CommandName = "setSpeed"
	CmdGetAllCookies                CommandName = "getAllCookies"
	CmdAddCookie                    CommandName = "addCookie"
	CmdDeleteAllCookies             CommandName = "deleteAllCookies"
	CmdDeleteCookie                 CommandName = "deleteCookie"
	CmdFindElement                  CommandName = "findElement"
	CmdFindElements                 CommandName = "findElements"
	CmdFindChildElement             CommandName = "findChildElement"
	CmdFindChildElements            CommandName = "findChildElements"
	CmdGetActiveElement             CommandName = "getActiveElement"
	CmdClickElement                 CommandName = "clickElement"
	CmdSubmitElement                CommandName = "submitElement"
	CmdToggleElement                CommandName = "toggleElement"
	CmdClearElement                 CommandName = "clearElement"
	CmdSetElementSelected           CommandName = "setElementSelected"
	CmdIsElementSelected            CommandName = "isElementSelected"
	CmdSendKeysToElement            CommandName = "sendKeysToElement"
	CmdGetElementValue              CommandName = "getElementValue"
	CmdGetElementTagName            CommandName = "getElementTagName"
	CmdGetElementText               CommandName = "getElementText"
	CmdGetElementAttribute          CommandName = "getElementAttribute"
	CmdIsElementEnabled             CommandName = "isElementEnabled"
	CmdIsElementDisplayed           CommandName = "isElementDisplayed"
	CmdGetElementLocation           CommandName = "getElementLocation"
	CmdGetElementLocationInView     CommandName = "getElementLocationInView"
	CmdGetElementSize               CommandName = "getElementSize"
	CmdGetElementValueOfCSSProperty CommandName = "getElementValueOfCssProperty"
	CmdSetElementValueOfCSSProperty CommandName = "setElementValueOfCssProperty"
	CmdHoverOverElement             CommandName = "hoverOverElement"
	CmdDragElement                  CommandName = "dragElement"
	CmdElementEquals                CommandName = "elementEquals"
	CmdExecuteScript                CommandName = "executeScript"
	CmdExecuteAsyncScript           CommandName = "executeAsyncScript"
	CmdAcceptAlert                  CommandName = "acceptAlert"
	CmdDismissAlert                 CommandName = "dismissAlert"
	CmdGetAlertText                 CommandName = "getAlertText"
	CmdSetAlertText                 CommandName = "setAlertText"
	CmdGetLog                       CommandName = "getLog"
	CmdGetAvailableLogTypes         CommandName = "getAvailableLogTypes"
)

// SessionParam is the placeholder that is filled with the Bridge's session
// id. Every other placeholder must be supplied by the caller.
const SessionParam = "sessionId"

var placeholderRE = regexp.MustCompile(`\{([A-Za-z]+)\}`)

// Command is an entry of the command table: an HTTP method and a path
// template relative to the server URL.
type Command struct {
	Method string
	Path   string

	params []string
}

func newCommand(method, path string) Command {
	cmd := Command{Method: method, Path: path}
	for _, m := range placeholderRE.FindAllStringSubmatch(path, -1) {
		if m[1] != SessionParam {
			cmd.params = append(cmd.params, m[1])
		}
	}
	return cmd
}

// Params returns the names of the placeholders, other than the session id,
// that must be supplied when building the command's URL.
func (cmd Command) Params() []string {
	return append([]string(nil), cmd.params...)
}

// URL substitutes sessionID and params into the path template. Every value is
// path-escaped. A placeholder without a value is an *ArgumentError.
func (cmd Command) URL(name CommandName, sessionID string, params map[string]string) (string, error) {
	var missing []string
	path := placeholderRE.ReplaceAllStringFunc(cmd.Path, func(p string) string {
		key := p[1 : len(p)-1]
		var v string
		var ok bool
		if key == SessionParam {
			v, ok = sessionID, sessionID != ""
		} else {
			v, ok = params[key]
		}
		if !ok {
			missing = append(missing, key)
			return p
		}
		return url.PathEscape(v)
	})
	if len(missing) > 0 {
		return "", argumentError(name, "missing required parameter(s) %s for %s %s", strings.Join(missing, ", "), cmd.Method, cmd.Path)
	}
	return path, nil
}

// CommandSet is a read-only mapping from command names to commands. It is
// built once and may be shared by any number of Bridges.
type CommandSet struct {
	commands map[CommandName]Command
}

// NewCommandSet builds a CommandSet from a table of command name to
// [method, path] pairs.
func NewCommandSet(table map[CommandName][2]string) (*CommandSet, error) {
	cs := &CommandSet{commands: make(map[CommandName]Command, len(table))}
	for name, entry := range table {
		switch entry[0] {
		case "GET", "POST", "DELETE", "PUT":
		default:
			return nil, fmt.Errorf("command %s: unsupported HTTP method %q", name, entry[0])
		}
		if entry[1] == "" || entry[1][0] != '/' {
			return nil, fmt.Errorf("command %s: path %q must start with '/'", name, entry[1])
		}
		cs.commands[name] = newCommand(entry[0], entry[1])
	}
	return cs, nil
}

// Lookup returns the named command.
func (cs *CommandSet) Lookup(name CommandName) (Command, bool) {
	cmd, ok := cs.commands[name]
	return cmd, ok
}

// Names returns the registered command names, sorted.
func (cs *CommandSet) Names() []CommandName {
	names := make([]CommandName, 0, len(cs.commands))
	for name := range cs.commands {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

var legacyCommands = mustCommandSet(map[CommandName][2]string{
	CmdStatus:          {"GET", "/status"},
	CmdNewSession:      {"POST", "/session"},
	CmdGetCapabilities: {"GET", "/session/{sessionId}"},
	CmdQuit:            {"DELETE", "/session/{sessionId}"},

	CmdGetCurrentURL:  {"GET", "/session/{sessionId}/url"},
	CmdGet:            {"POST", "/session/{sessionId}/url"},
	CmdGoBack:         {"POST", "/session/{sessionId}/back"},
	CmdGoForward:      {"POST", "/session/{sessionId}/forward"},
	CmdRefresh:        {"POST", "/session/{sessionId}/refresh"},
	CmdGetTitle:       {"GET", "/session/{sessionId}/title"},
	CmdGetPageSource:  {"GET", "/session/{sessionId}/source"},
	CmdScreenshot:     {"GET", "/session/{sessionId}/screenshot"},
	CmdExecuteScript:  {"POST", "/session/{sessionId}/execute"},
	CmdGetSpeed:       {"GET", "/session/{sessionId}/speed"},
	CmdSetSpeed:       {"POST", "/session/{sessionId}/speed"},
	CmdAcceptAlert:    {"POST", "/session/{sessionId}/accept_alert"},
	CmdDismissAlert:   {"POST", "/session/{sessionId}/dismiss_alert"},
	CmdGetAlertText:   {"GET", "/session/{sessionId}/alert_text"},
	CmdSetAlertText:   {"POST", "/session/{sessionId}/alert_text"},
	CmdSwitchToFrame:  {"POST", "/session/{sessionId}/frame"},
	CmdSwitchToWindow: {"POST", "/session/{sessionId}/window"},
	CmdClose:          {"DELETE", "/session/{sessionId}/window"},

	CmdExecuteAsyncScript:     {"POST", "/session/{sessionId}/execute_async"},
	CmdIsBrowserVisible:       {"GET", "/session/{sessionId}/visible"},
	CmdSetBrowserVisible:      {"POST", "/session/{sessionId}/visible"},
	CmdGetCurrentWindowHandle: {"GET", "/session/{sessionId}/window_handle"},
	CmdGetWindowHandles:       {"GET", "/session/{sessionId}/window_handles"},
	CmdGetImplicitWait:        {"GET", "/session/{sessionId}/timeouts/implicit_wait"},
	CmdImplicitlyWait:         {"POST", "/session/{sessionId}/timeouts/implicit_wait"},
	CmdSetScriptTimeout:       {"POST", "/session/{sessionId}/timeouts/async_script"},

	CmdGetAllCookies:    {"GET", "/session/{sessionId}/cookie"},
	CmdAddCookie:        {"POST", "/session/{sessionId}/cookie"},
	CmdDeleteAllCookies: {"DELETE", "/session/{sessionId}/cookie"},
	CmdDeleteCookie:     {"DELETE", "/session/{sessionId}/cookie/{name}"},

	CmdGetLog:               {"POST", "/session/{sessionId}/log"},
	CmdGetAvailableLogTypes: {"GET", "/session/{sessionId}/log/types"},

	CmdFindElement:       {"POST", "/session/{sessionId}/element"},
	CmdFindElements:      {"POST", "/session/{sessionId}/elements"},
	CmdGetActiveElement:  {"POST", "/session/{sessionId}/element/active"},
	CmdFindChildElement:  {"POST", "/session/{sessionId}/element/{id}/element"},
	CmdFindChildElements: {"POST", "/session/{sessionId}/element/{id}/elements"},

	CmdClickElement:                 {"POST", "/session/{sessionId}/element/{id}/click"},
	CmdClearElement:                 {"POST", "/session/{sessionId}/element/{id}/clear"},
	CmdSubmitElement:                {"POST", "/session/{sessionId}/element/{id}/submit"},
	CmdToggleElement:                {"POST", "/session/{sessionId}/element/{id}/toggle"},
	CmdGetElementText:               {"GET", "/session/{sessionId}/element/{id}/text"},
	CmdSendKeysToElement:            {"POST", "/session/{sessionId}/element/{id}/value"},
	CmdGetElementValue:              {"GET", "/session/{sessionId}/element/{id}/value"},
	CmdGetElementTagName:            {"GET", "/session/{sessionId}/element/{id}/name"},
	CmdIsElementSelected:            {"GET", "/session/{sessionId}/element/{id}/selected"},
	CmdSetElementSelected:           {"POST", "/session/{sessionId}/element/{id}/selected"},
	CmdIsElementEnabled:             {"GET", "/session/{sessionId}/element/{id}/enabled"},
	CmdIsElementDisplayed:           {"GET", "/session/{sessionId}/element/{id}/displayed"},
	CmdHoverOverElement:             {"POST", "/session/{sessionId}/element/{id}/hover"},
	CmdDragElement:                  {"POST", "/session/{sessionId}/element/{id}/drag"},
	CmdGetElementLocation:           {"GET", "/session/{sessionId}/element/{id}/location"},
	CmdGetElementLocationInView:     {"GET", "/session/{sessionId}/element/{id}/location_in_view"},
	CmdGetElementSize:               {"GET", "/session/{sessionId}/element/{id}/size"},
	CmdGetElementAttribute:          {"GET", "/session/{sessionId}/element/{id}/attribute/{name}"},
	CmdElementEquals:                {"GET", "/session/{sessionId}/element/{id}/equals/{other}"},
	CmdGetElementValueOfCSSProperty: {"GET", "/session/{sessionId}/element/{id}/css/{propertyName}"},
	CmdSetElementValueOfCSSProperty: {"POST", "/session/{sessionId}/element/{id}/css/{propertyName}"},
})

func mustCommandSet(table map[CommandName][2]string) *CommandSet {
	cs, err := NewCommandSet(table)
	if err != nil {
		panic(err)
	}
	return cs
}

// LegacyCommands returns the command table of the legacy JSON wire protocol.
// It is the default for every Bridge.
func LegacyCommands() *CommandSet {
	return legacyCommands
}
