package protocol

// Endpoint names form frame 0 of every API request.
const (
	EndpointCommandExec = "command::exec"

	EndpointFileIsFile   = "file::is_file"
	EndpointFileExists   = "file::exists"
	EndpointFileDelete   = "file::delete"
	EndpointFileMove     = "file::mv"
	EndpointFileCopy     = "file::copy"
	EndpointFileGetOwner = "file::get_owner"
	EndpointFileSetOwner = "file::set_owner"
	EndpointFileGetMode  = "file::get_mode"
	EndpointFileSetMode  = "file::set_mode"
	EndpointFileUpload   = "file::upload"

	EndpointDirIsDirectory = "directory::is_directory"
	EndpointDirExists      = "directory::exists"
	EndpointDirCreate      = "directory::create"
	EndpointDirDelete      = "directory::delete"
	EndpointDirMove        = "directory::mv"
	EndpointDirGetOwner    = "directory::get_owner"
	EndpointDirSetOwner    = "directory::set_owner"
	EndpointDirGetMode     = "directory::get_mode"
	EndpointDirSetMode     = "directory::set_mode"

	EndpointPackageDefaultProvider = "package::default_provider"
	EndpointServiceAction          = "service::action"
	EndpointTelemetry              = "telemetry"
)

// Response headers.
const (
	HeaderOk  = "Ok"
	HeaderErr = "Err"
)

const (
	frameTrue  = "1"
	frameFalse = "0"
)

// BoolFrame encodes a boolean result frame.
func BoolFrame(v bool) string {
	if v {
		return frameTrue
	}
	return frameFalse
}
