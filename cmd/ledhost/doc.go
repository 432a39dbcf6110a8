// Command ledhost drives chained HUB75 LED panels: it boots the
// launcher core, serves the control API, and degrades to rescue mode
// when the display path or an app takes the loop down.
//
// Exit codes: 0 clean shutdown, 2 terminated from rescue mode, 3
// rescue restart requested (the supervisor relaunches the process).
package main
