// Package bot implements the chat command surface of dropletd.
//
// Commands are matched by prefix (default "!"):
//
//	turn on stream   create or reuse the tagged droplet and watch it for inactivity
//	turn off stream  destroy every droplet carrying the tag
//	stream status    show the droplet, its stream URLs and action statuses
//	stream help      list the commands
//
// Every command counts against a shared rate limiter. Turning the stream
// on or off additionally requires the author to manage the server. All
// replies are queued on the outbound notifier, never sent inline.
package bot
