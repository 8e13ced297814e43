// Package control maintains the control file, the one-way command mailbox
// from firesim to the external fire simulation process.
//
// The file is a JSON object whose fields are all optional:
//
//	{
//	  "paused": false,
//	  "step": false,
//	  "windEnabled": true,
//	  "windAngle": 45,
//	  "windStrength": 12,
//	  "thunderPercentage": 0
//	}
//
// [Store.Write] merges a partial [Record] into whatever is on disk, so fields
// the caller does not mention keep their previous value. The step flag is the
// exception: it is written as false unless the same call requests a step.
//
// # Usage
//
//	st := control.NewStore("res/sim_control.json")
//	st.Write(control.Record{Paused: control.Bool(true)})
//	st.Write(control.Record{Step: control.Bool(true)})
package control
