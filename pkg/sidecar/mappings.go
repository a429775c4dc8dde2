package sidecar

// Mapping copies one source tag into one destination tag during the
// exiftool invocation. The tables below are ordered data, not logic: the
// exact directives and their order are the interoperability contract for
// sidecars read back by digiKam, Lightroom, and Darktable.
type Mapping struct {
	Dst string
	Src string
}

// fieldMappings are the explicit EXIF/TIFF/IPTC/GPS to XMP-namespace
// copies. GPS latitude/longitude come from the composite fields so the
// hemisphere sign survives.
var fieldMappings = []Mapping{
	// TIFF to XMP-tiff
	{"XMP-tiff:Make", "EXIF:Make"},
	{"XMP-tiff:Model", "EXIF:Model"},
	{"XMP-tiff:Orientation", "EXIF:Orientation"},
	{"XMP-tiff:XResolution", "EXIF:XResolution"},
	{"XMP-tiff:YResolution", "EXIF:YResolution"},
	{"XMP-tiff:ResolutionUnit", "EXIF:ResolutionUnit"},
	// EXIF to XMP-exif
	{"XMP-exif:ExposureTime", "EXIF:ExposureTime"},
	{"XMP-exif:FNumber", "EXIF:FNumber"},
	{"XMP-exif:ISOSpeedRatings", "EXIF:ISO"},
	{"XMP-exif:FocalLength", "EXIF:FocalLength"},
	{"XMP-exif:DateTimeOriginal", "EXIF:DateTimeOriginal"},
	{"XMP-exif:LensModel", "EXIF:LensModel"},
	{"XMP-exif:LensMake", "EXIF:LensMake"},
	{"XMP-exif:WhiteBalance", "EXIF:WhiteBalance"},
	{"XMP-exif:MeteringMode", "EXIF:MeteringMode"},
	{"XMP-exif:ExposureProgram", "EXIF:ExposureProgram"},
	// Lens info in auxiliary namespace for broader compatibility
	{"XMP-aux:Lens", "EXIF:LensModel"},
	{"XMP-aux:LensID", "Composite:LensID"},
	// Additional commonly useful EXIF to XMP-exif fields
	{"XMP-exif:ExposureBiasValue", "EXIF:ExposureBiasValue"},
	{"XMP-exif:ShutterSpeedValue", "EXIF:ShutterSpeedValue"},
	{"XMP-exif:ApertureValue", "EXIF:ApertureValue"},
	{"XMP-exif:BrightnessValue", "EXIF:BrightnessValue"},
	{"XMP-exif:Flash", "EXIF:Flash"},
	{"XMP-exif:FocalLengthIn35mmFilm", "EXIF:FocalLengthIn35mmFilm"},
	{"XMP-exif:ColorSpace", "EXIF:ColorSpace"},
	{"XMP-exif:ExifVersion", "EXIF:ExifVersion"},
	{"XMP-exif:SceneCaptureType", "EXIF:SceneCaptureType"},
	{"XMP-exif:SensingMethod", "EXIF:SensingMethod"},
	{"XMP-exif:SubjectArea", "EXIF:SubjectArea"},
	{"XMP-exif:PixelXDimension", "EXIF:ExifImageWidth"},
	{"XMP-exif:PixelYDimension", "EXIF:ExifImageHeight"},
	// ISO synonyms
	{"XMP-exif:PhotographicSensitivity", "EXIF:ISO"},
	// Timezone and subsecond precision
	{"XMP-exif:OffsetTime", "EXIF:OffsetTime"},
	{"XMP-exif:OffsetTimeOriginal", "EXIF:OffsetTimeOriginal"},
	{"XMP-exif:OffsetTimeDigitized", "EXIF:OffsetTimeDigitized"},
	{"XMP-exif:SubSecTimeOriginal", "EXIF:SubSecTimeOriginal"},
	{"XMP-exif:SubSecTimeDigitized", "EXIF:SubSecTimeDigitized"},
	// Host computer
	{"XMP-exif:HostComputer", "IFD0:HostComputer"},
	// GPS into XMP-exif (Composite for Lat/Long preserves E/W/N/S)
	{"XMP-exif:GPSLatitude", "Composite:GPSLatitude"},
	{"XMP-exif:GPSLongitude", "Composite:GPSLongitude"},
	{"XMP-exif:GPSAltitude", "GPS:GPSAltitude"},
	{"XMP-exif:GPSDateStamp", "GPS:GPSDateStamp"},
	{"XMP-exif:GPSTimeStamp", "GPS:GPSTimeStamp"},
	{"XMP-exif:GPSSpeed", "GPS:GPSSpeed"},
	{"XMP-exif:GPSSpeedRef", "GPS:GPSSpeedRef"},
	{"XMP-exif:GPSImgDirection", "GPS:GPSImgDirection"},
	{"XMP-exif:GPSImgDirectionRef", "GPS:GPSImgDirectionRef"},
	{"XMP-exif:GPSDestBearing", "GPS:GPSDestBearing"},
	{"XMP-exif:GPSDestBearingRef", "GPS:GPSDestBearingRef"},
	// XMP core from EXIF/IPTC
	{"XMP-xmp:CreateDate", "EXIF:CreateDate"},
	{"XMP-xmp:ModifyDate", "EXIF:ModifyDate"},
	{"XMP-xmp:CreatorTool", "IFD0:Software"},
	{"XMP-dc:Title", "IPTC:ObjectName"},
	{"XMP-dc:Description", "IPTC:Caption-Abstract"},
	{"XMP-dc:Creator", "IPTC:By-line"},
	{"XMP-dc:Rights", "IPTC:CopyrightNotice"},
}

// groupFallthroughs copy whole groups so fields without an explicit
// mapping above still reach a sensible XMP namespace.
var groupFallthroughs = []Mapping{
	{"XMP-exif:all", "EXIF:all"},
	{"XMP-exif:all", "ExifIFD:all"},
	{"XMP-tiff:all", "IFD0:all"},
	{"XMP-exif:all", "GPS:all"},
}

// catchAll pushes anything still unmapped into XMP where exiftool can
// find a home for it, so present-but-unmapped fields are not lost.
var catchAll = []Mapping{
	{"XMP:all", "EXIF:all"},
	{"XMP:all", "ExifIFD:all"},
	{"XMP:all", "IFD0:all"},
	{"XMP:all", "GPS:all"},
	{"XMP:all", "XMP:all"},
	{"XMP:all", "Composite:all"},
}

// mappingArgs renders all three tables, in order, as exiftool copy
// directives of the form "-Dst<Src".
func mappingArgs() []string {
	args := make([]string, 0, len(fieldMappings)+len(groupFallthroughs)+len(catchAll))
	for _, tables := range [][]Mapping{fieldMappings, groupFallthroughs, catchAll} {
		for _, m := range tables {
			args = append(args, "-"+m.Dst+"<"+m.Src)
		}
	}
	return args
}
